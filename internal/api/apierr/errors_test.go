package apierr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dicearena-go/internal/model"
)

func TestWriteErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"player not found", model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
		{"wrapped player not found", fmt.Errorf("get bob: %w", model.ErrPlayerNotFound), http.StatusNotFound, CodePlayerNotFound},
		{"match not found", model.ErrMatchNotFound, http.StatusNotFound, CodeMatchNotFound},
		{"invalid player", model.ErrInvalidPlayer, http.StatusBadRequest, CodeInvalidRequest},
		{"stopped", model.ErrCoordinatorStopped, http.StatusServiceUnavailable, CodeServiceUnavailable},
		{"invalid request", NewInvalidRequestError("bad id"), http.StatusBadRequest, CodeInvalidRequest},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestUnknownErrorsHideTheCause(t *testing.T) {
	e := From(fmt.Errorf("redis: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.Equal(t, "Internal server error", e.Message)
}

func TestErrorSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewInvalidRequestError("player id is required"))

	e := From(wrapped)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "player id is required", e.Message)
}
