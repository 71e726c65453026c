package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Post struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

var demoPosts = []Post{
	{Name: "etienne", Title: "post 1"},
	{Name: "joe", Title: "post 2"},
}

// Posts serves a fixed list. It exists to demonstrate a gated route.
func Posts(c echo.Context) error {
	return c.JSON(http.StatusOK, demoPosts)
}
