package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/horusauth/horus/internal/verify"
)

// errInvalidRequestBody is a shared error message for invalid request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondOutcome maps a pipeline outcome onto the transport. Worker failures
// keep their diagnostic detail in the server log only.
func respondOutcome(w http.ResponseWriter, out verify.Outcome, successStatus int, successBody any) {
	if out.Kind == verify.Success {
		respondJSON(w, successStatus, successBody)
		return
	}
	if out.Kind == verify.WorkerError && out.Detail != "" {
		log.Printf("verification worker error: %s", sanitizeForLog(out.Detail))
	}
	respondError(w, out.HTTPStatus(successStatus), out.Reason)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// splitPaths decodes a comma-joined path list, preserving order: the order of
// gesture paths encodes the combination sequence.
func splitPaths(joined string) []string {
	if joined == "" {
		return nil
	}
	var paths []string
	for _, p := range strings.Split(joined, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
