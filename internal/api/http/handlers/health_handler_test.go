package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCounter struct{ n int64 }

func (s stubCounter) Count(context.Context) (int64, error) { return s.n, nil }

func TestReady(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		h := NewHealthHandler("helpdesk", "test", stubPinger{}, stubPinger{}, stubCounter{n: 3})
		app := fiber.New()
		app.Get("/ready", h.Ready)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ready", body["status"])
		assert.EqualValues(t, 3, body["userCount"])
	})

	t.Run("redis down", func(t *testing.T) {
		h := NewHealthHandler("helpdesk", "test", stubPinger{}, stubPinger{err: errors.New("dial tcp: refused")}, nil)
		app := fiber.New()
		app.Get("/ready", h.Ready)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
