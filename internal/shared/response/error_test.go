package response

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planets-galaxymap/internal/shared/errors"
)

func TestErrorStatusCodes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		err    error
		status int
	}{
		{errors.NotFoundf("planet %q not found", "Kuat"), http.StatusNotFound},
		{errors.Validation("bad quadrant"), http.StatusBadRequest},
		{errors.Conflictf("taken"), http.StatusConflict},
		{errors.Unauthorized("no token"), http.StatusUnauthorized},
		{errors.Forbidden("admins only"), http.StatusForbidden},
		{errors.MethodNotAllowed(http.MethodPut), http.StatusMethodNotAllowed},
		{errors.WrapExternal("xml broken", fmt.Errorf("eof")), http.StatusServiceUnavailable},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), logger, tt.err)

		require.Equal(t, tt.status, rec.Code, tt.err.Error())
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, tt.status, body.Code)
		assert.Equal(t, tt.err.Error(), body.Message)
	}
}

func TestErrorWithMessageHidesInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorWithMessage(rec, httptest.NewRequest(http.MethodGet, "/", nil),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		errors.WrapInternal("verification failed", fmt.Errorf("table mismatch at Kuat")),
		"export failed")

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "export failed", body.Message)
	assert.Equal(t, "internal", body.Error)
}

func TestDocument(t *testing.T) {
	rec := httptest.NewRecorder()
	Document(rec, http.StatusOK, "text/x-lua; charset=utf-8", "PlanetDataBase = {\n}\n")

	assert.Equal(t, "text/x-lua; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "PlanetDataBase = {\n}\n", rec.Body.String())
}
