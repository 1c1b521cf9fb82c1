package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"khata/internal/handler"
)

func ping(err error) handler.PingFunc {
	return func(context.Context) error { return err }
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(ping(errors.New("down")), ping(nil))

	w, c := newRequest(t, http.MethodGet, "/healthz", nil)
	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name    string
		db      error
		drafts  error
		status  int
		message string
	}{
		{"ready", nil, nil, http.StatusOK, `"ok"`},
		{"database down", errors.New("refused"), nil, http.StatusServiceUnavailable, "database not reachable"},
		{"draft store down", nil, errors.New("refused"), http.StatusServiceUnavailable, "draft store not reachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(ping(tt.db), ping(tt.drafts))

			w, c := newRequest(t, http.MethodGet, "/readyz", nil)
			h.Readiness(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}
