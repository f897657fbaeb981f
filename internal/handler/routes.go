package handler

import "net/http"

// RegisterRoutes wires the folder API onto mux (Go 1.22+ enhanced patterns)
func RegisterRoutes(mux *http.ServeMux, actions *ActionHandler, folders *FolderHandler, health *HealthHandler) {
	mux.HandleFunc("GET /health", health.HealthCheck)

	// Commands
	mux.HandleFunc("POST /api/actions/{action}/token", actions.IssueToken)
	mux.HandleFunc("POST /api/actions/{action}", actions.Execute)

	// Reads ({kind} is "forms" or "views")
	mux.HandleFunc("GET /api/{kind}/folders", folders.ListFolders)
	mux.HandleFunc("GET /api/{kind}/folders/{id}", folders.GetFolder)
	mux.HandleFunc("GET /api/{kind}/folders/{id}/contents", folders.FolderContents)
	mux.HandleFunc("GET /api/{kind}/unassigned", folders.UnassignedRecords)
}
