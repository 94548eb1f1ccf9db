package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter)
		wantStatus int
		wantBody   string
	}{
		{"ok", func(w http.ResponseWriter) { WriteJSONOK(w, map[string]int{"n": 1}) }, http.StatusOK, `{"n":1}`},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "missing subject") }, http.StatusBadRequest, `{"error":"missing subject"}`},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "no trail") }, http.StatusNotFound, `{"error":"no trail"}`},
		{"method", MethodNotAllowed, http.StatusMethodNotAllowed, `{"error":"method not allowed"}`},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "boom") }, http.StatusInternalServerError, `{"error":"boom"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRequireMethod(t *testing.T) {
	w := httptest.NewRecorder()
	assert.True(t, RequireMethod(w, httptest.NewRequest(http.MethodPost, "/", nil), http.MethodPost))

	w = httptest.NewRecorder()
	assert.False(t, RequireMethod(w, httptest.NewRequest(http.MethodGet, "/", nil), http.MethodPost))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Subject string `json:"subject"`
	}

	var b body
	require.NoError(t, DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"subject":"p1"}`)), &b))
	assert.Equal(t, "p1", b.Subject)

	for _, in := range []string{"", "{", `{"subject":"p1","extra":1}`} {
		err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(in)), &b)
		assert.Error(t, err, "input %q", in)
	}
}

func TestReadBodyLimit(t *testing.T) {
	b, err := ReadBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abc")))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))

	_, err = ReadBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", MaxBodyBytes+1))))
	assert.Error(t, err)
}

func TestGetBytes(t *testing.T) {
	mock := NewMockHTTPClient().
		AddResponse(http.StatusOK, `{"fights":[]}`).
		AddResponse(http.StatusNotFound, "").
		AddErrorResponse(errors.New("connection refused"))

	b, err := GetBytes(context.Background(), mock, "https://example.test/a")
	require.NoError(t, err)
	assert.Equal(t, `{"fights":[]}`, string(b))

	_, err = GetBytes(context.Background(), mock, "https://example.test/b")
	assert.ErrorContains(t, err, "unexpected status 404")

	_, err = GetBytes(context.Background(), mock, "https://example.test/c")
	assert.ErrorContains(t, err, "connection refused")

	assert.Equal(t, 3, mock.RequestCount())
	assert.Equal(t, "/b", mock.Request(1).URL.Path)
	assert.Equal(t, "application/json", mock.Request(0).Header.Get("Accept"))
	assert.Nil(t, mock.Request(9))

	// Exhausted queue answers 200 with an empty body.
	b, err = GetBytes(context.Background(), mock, "https://example.test/d")
	require.NoError(t, err)
	assert.Empty(t, b)
}
