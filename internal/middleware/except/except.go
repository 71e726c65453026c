// Package except decides which request paths skip a middleware.
//
// A pattern is either an exact path ("/health") or a prefix followed by "/*"
// ("/public/*"), which exempts every path nested under the prefix. Incoming
// paths lose one trailing slash before matching.
package except

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const wildcard = "/*"

type Rules struct {
	exact     map[string]struct{}
	prefixes  []string
	matchBare bool
}

type Option func(*Rules)

// MatchBare makes "/public/*" exempt "/public" itself as well.
func MatchBare() Option {
	return func(r *Rules) { r.matchBare = true }
}

func New(patterns []string, opts ...Option) *Rules {
	r := &Rules{exact: make(map[string]struct{}, len(patterns))}
	for _, p := range patterns {
		if strings.HasSuffix(p, wildcard) {
			r.prefixes = append(r.prefixes, strings.TrimSuffix(p, wildcard))
			continue
		}
		r.exact[trimSlash(p)] = struct{}{}
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Rules) Exempt(path string) bool {
	path = trimSlash(path)
	if _, ok := r.exact[path]; ok {
		return true
	}
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(path, prefix+"/") {
			return true
		}
		if r.matchBare && path == prefix {
			return true
		}
	}
	return false
}

// Skipper plugs the rules into echo middleware configs that accept one.
func (r *Rules) Skipper() middleware.Skipper {
	return func(c echo.Context) bool {
		return r.Exempt(c.Request().URL.Path)
	}
}

// Wrap runs mw only for paths that are not exempt.
func (r *Rules) Wrap(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := mw(next)
		return func(c echo.Context) error {
			if r.Exempt(c.Request().URL.Path) {
				return next(c)
			}
			return guarded(c)
		}
	}
}

func trimSlash(p string) string {
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return p[:len(p)-1]
	}
	return p
}
