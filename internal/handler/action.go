package handler

import (
	"log/slog"
	"net/http"
	"time"

	"binder/internal/httputil"
	"binder/internal/service/folders"
)

// ActionHandler exposes the gateway over HTTP
type ActionHandler struct {
	gateway *folders.Gateway
	logger  *slog.Logger
}

// NewActionHandler creates a new action handler
func NewActionHandler(gateway *folders.Gateway, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// TokenResponse carries a freshly minted action token
type TokenResponse struct {
	Action    string    `json:"action"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken mints a single-use token for a mutating action
// POST /api/actions/{action}/token
func (h *ActionHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")

	token, expires, err := h.gateway.IssueToken(httputil.GetCaller(r), action)
	if err != nil {
		writeResult(w, folders.Failed(err))
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, TokenResponse{
		Action:    action,
		Token:     token,
		ExpiresAt: expires,
	})
}

// Execute runs the named command with the request body as its payload
// POST /api/actions/{action}
func (h *ActionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")

	body, err := httputil.ReadBody(w, r)
	if err != nil {
		h.logger.Debug("action body rejected", "action", action, "error", err)
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	writeResult(w, h.gateway.ExecutePayload(r.Context(), httputil.GetCaller(r), action, body))
}
