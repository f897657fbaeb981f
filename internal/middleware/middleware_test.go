package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"binder/internal/auth"
	"binder/internal/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuth(t *testing.T) {
	verifier, err := auth.NewHMACVerifier(testSecret, discardLogger())
	require.NoError(t, err)

	valid, err := auth.IssueCallerToken(testSecret, "admin-1", "a@example.com", []string{"gform_full_access"}, time.Hour)
	require.NoError(t, err)
	foreign, err := auth.IssueCallerToken("other-secret", "admin-1", "", nil, time.Hour)
	require.NoError(t, err)

	var seenUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if caller := httputil.GetCaller(r); caller != nil {
			seenUser = caller.UserID
			assert.True(t, caller.Can("gform_full_access"))
		}
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Auth(verifier, discardLogger(), "/health")(next)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"valid token", "/api/forms/folders", "Bearer " + valid, http.StatusNoContent, "admin-1"},
		{"lowercase scheme", "/api/forms/folders", "bearer " + valid, http.StatusNoContent, "admin-1"},
		{"missing header", "/api/forms/folders", "", http.StatusUnauthorized, ""},
		{"basic auth", "/api/forms/folders", "Basic YWRtaW46YWRtaW4=", http.StatusUnauthorized, ""},
		{"wrong signature", "/api/forms/folders", "Bearer " + foreign, http.StatusUnauthorized, ""},
		{"public path", "/health", "", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenUser = ""
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, seenUser)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantStatus  int
		wantBody    string
		wantProblem bool
	}{
		{
			name:        "panic before writing",
			handler:     func(http.ResponseWriter, *http.Request) { panic("boom") },
			wantStatus:  http.StatusInternalServerError,
			wantBody:    "internal server error",
			wantProblem: true,
		},
		{
			name: "panic after writing",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte("partial"))
				panic("boom")
			},
			wantStatus: http.StatusAccepted,
			wantBody:   "partial",
		},
		{
			name:       "no panic",
			handler:    func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) },
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Recovery(discardLogger())(tt.handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forms/folders", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody == "", rec.Body.Len() == 0)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if tt.wantProblem {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			} else {
				assert.NotContains(t, rec.Body.String(), "internal server error")
			}
		})
	}
}

func TestRecoveryRepanicsAbort(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestAccessLogKeepsStatus(t *testing.T) {
	handler := AccessLog(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
