package handler

import (
	"net/http"

	"binder/internal/httputil"
	"binder/internal/service/folders"
)

// writeResult writes a gateway result with the status its failure kind maps to
func writeResult(w http.ResponseWriter, result *folders.Result) {
	httputil.RespondJSON(w, result.StatusCode(), result)
}
