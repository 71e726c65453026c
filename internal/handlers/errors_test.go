package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/saas_boilerplate/internal/service"
)

func TestStatusMapsEveryServiceError(t *testing.T) {
	t.Parallel()

	want := map[error]int{
		service.ErrNotFound:           http.StatusNotFound,
		service.ErrInvalidCredentials: http.StatusBadRequest,
		service.ErrForbidden:          http.StatusForbidden,
		service.ErrBadRequest:         http.StatusBadRequest,
		service.ErrPersistence:        http.StatusInternalServerError,
		service.ErrInternal:           http.StatusInternalServerError,
		service.ErrConflict:           http.StatusConflict,
		service.ErrValidation:         http.StatusBadRequest,
		service.ErrUnavailable:        http.StatusServiceUnavailable,
	}
	assert.Len(t, want, len(service.Taxonomy))

	for _, sentinel := range service.Taxonomy {
		expected, ok := want[sentinel]
		if !assert.True(t, ok, "no expected status for %v", sentinel) {
			continue
		}
		got, _ := Status(fmt.Errorf("op: %w", sentinel))
		assert.Equal(t, expected, got, sentinel.Error())
	}
}

func TestStatusDefaults(t *testing.T) {
	t.Parallel()

	status, msg := Status(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", msg)

	status, msg = Status(&service.ValidationError{Fields: []service.FieldError{{Field: "email", Message: "bad"}}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid data", msg)
}

func TestStatusHidesCause(t *testing.T) {
	t.Parallel()

	_, msg := Status(fmt.Errorf("%w: pq: connection refused", service.ErrPersistence))
	assert.Equal(t, "internal error", msg)
}
