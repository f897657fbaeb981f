package handler

import (
	"log/slog"
	"net/http"

	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/httputil"
	"binder/internal/service/folders"
)

// FolderHandler serves the read operations as plain GET routes.
// Every request still goes through the gateway.
type FolderHandler struct {
	gateway *folders.Gateway
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(gateway *folders.Gateway, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// ListFolders lists the folders of a kind with member counts
// GET /api/{kind}/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	envelope, ok := kindEnvelope(w, r)
	if !ok {
		return
	}
	h.run(w, r, folders.ListFolders{Envelope: envelope})
}

// GetFolder retrieves one folder
// GET /api/{kind}/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	envelope, ok := kindEnvelope(w, r)
	if !ok {
		return
	}
	h.run(w, r, folders.GetFolder{Envelope: envelope, FolderID: r.PathValue("id")})
}

// FolderContents returns a folder and its live records in display order
// GET /api/{kind}/folders/{id}/contents
func (h *FolderHandler) FolderContents(w http.ResponseWriter, r *http.Request) {
	envelope, ok := kindEnvelope(w, r)
	if !ok {
		return
	}
	h.run(w, r, folders.FolderContents{Envelope: envelope, FolderID: r.PathValue("id")})
}

// UnassignedRecords lists live records that sit in no folder
// GET /api/{kind}/unassigned
func (h *FolderHandler) UnassignedRecords(w http.ResponseWriter, r *http.Request) {
	envelope, ok := kindEnvelope(w, r)
	if !ok {
		return
	}
	h.run(w, r, folders.UnassignedRecords{Envelope: envelope})
}

func (h *FolderHandler) run(w http.ResponseWriter, r *http.Request, cmd folders.Command) {
	writeResult(w, h.gateway.Execute(r.Context(), httputil.GetCaller(r), cmd))
}

// kindEnvelope parses the {kind} path segment ("forms" or "views")
func kindEnvelope(w http.ResponseWriter, r *http.Request) (folders.Envelope, bool) {
	kind, err := models.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeResult(w, folders.Failed(&domain.ValidationError{Message: err.Error()}))
		return folders.Envelope{}, false
	}
	return folders.Envelope{Kind: kind}, true
}
