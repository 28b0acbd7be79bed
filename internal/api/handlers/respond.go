package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/finn/cloud-drive-backend/internal/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: message}})
}

// writeDomainError is the single point translating domain errors to HTTP.
// Internal components never format responses themselves.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "unauthenticated", "not authenticated")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_name", "name is empty or too long")
	case errors.Is(err, domain.ErrInvalidParent):
		writeError(w, http.StatusBadRequest, "invalid_parent", "parent folder does not exist or is not yours")
	case errors.Is(err, domain.ErrCycleDetected):
		writeError(w, http.StatusConflict, "cycle_detected", "operation would create a folder cycle")
	case errors.Is(err, domain.ErrFolderNotEmpty):
		writeError(w, http.StatusConflict, "folder_not_empty", "folder must be empty before deletion")
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, "conflict", "email already registered")
	case errors.Is(err, domain.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds maximum size")
	case errors.Is(err, domain.ErrStorageFailure):
		writeError(w, http.StatusBadGateway, "storage_failure", "storage temporarily unavailable")
	default:
		log.Printf("ERROR [handlers] internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
