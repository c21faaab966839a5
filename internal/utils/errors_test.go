package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"not found":   {NewNotFoundError("Post not found"), http.StatusNotFound},
		"invalid":     {NewInvalidInputError("title is required"), http.StatusBadRequest},
		"credentials": {NewAppError(ErrInvalidCredentials, "Invalid credentials", nil), http.StatusBadRequest},
		"unauth":      {NewUnauthorizedError("no token"), http.StatusUnauthorized},
		"token":       {NewAppError(ErrInvalidToken, "bad token", nil), http.StatusUnauthorized},
		"forbidden":   {NewForbiddenError("not yours"), http.StatusForbidden},
		"duplicate":   {NewAppError(ErrDuplicate, "User already exists", nil), http.StatusConflict},
		"database":    {NewDatabaseError("insert failed", errors.New("io")), http.StatusInternalServerError},
		"plain":       {errors.New("boom"), http.StatusInternalServerError},
		"wrapped":     {fmt.Errorf("loading: %w", NewNotFoundError("Post not found")), http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	origin := errors.New("connection reset")
	err := NewDatabaseError("failed to load post", origin)

	assert.ErrorIs(t, err, origin)
	assert.Equal(t, "failed to load post: connection reset", err.Error())
	assert.True(t, IsErrorCode(err, ErrDatabase))
	assert.False(t, IsErrorCode(err, ErrNotFound))
}
