package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/finn/cloud-drive-backend/internal/api/middleware"
	"github.com/finn/cloud-drive-backend/internal/domain"
	"github.com/finn/cloud-drive-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// multipartMemoryLimit is the in-memory threshold for multipart parsing;
// larger uploads spill to temp files before streaming to blob storage.
const multipartMemoryLimit = 8 << 20

type FileHandler struct {
	fileService    *service.FileService
	maxUploadBytes int64
}

func NewFileHandler(fileService *service.FileService, maxUploadBytes int64) *FileHandler {
	return &FileHandler{fileService: fileService, maxUploadBytes: maxUploadBytes}
}

// ListRoot returns the files sitting directly in the requester's root.
func (h *FileHandler) ListRoot(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	files, err := h.fileService.ListRoot(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

// Upload accepts a multipart form with a "file" part and an optional
// "folderId" field. Oversized requests are rejected from the declared length
// before any bytes are read.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	if r.ContentLength > h.maxUploadBytes+multipartMemoryLimit {
		writeDomainError(w, domain.ErrFileTooLarge)
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "file field is required")
		return
	}
	defer part.Close()

	var folderID *uuid.UUID
	if raw := r.FormValue("folderId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "folderId must be a UUID")
			return
		}
		folderID = &id
	}

	file, err := h.fileService.Upload(r.Context(), service.UploadInput{
		OwnerID:      userID,
		FolderID:     folderID,
		Name:         header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		DeclaredSize: header.Size,
		Body:         part,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, file)
}

// Download streams the file bytes with the stored content type and original
// name.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, fileID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	file, body, err := h.fileService.Download(r.Context(), fileID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer body.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", file.Size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))

	if _, err := io.Copy(w, body); err != nil {
		// Headers are gone; nothing to do but log.
		return
	}
}

type MoveFileRequest struct {
	FolderID *string `json:"folderId"` // null or absent moves to root
}

// Move changes a file's containing folder.
func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID, fileID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	var req MoveFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	folderID, err := parseOptionalID(req.FolderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "folderId must be a UUID")
		return
	}

	file, err := h.fileService.Move(r.Context(), fileID, userID, folderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, fileID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	if err := h.fileService.Delete(r.Context(), fileID, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *FileHandler) requestIDs(w http.ResponseWriter, r *http.Request) (userID, fileID uuid.UUID, ok bool) {
	userID, found := middleware.GetUserID(r.Context())
	if !found {
		writeDomainError(w, domain.ErrUnauthenticated)
		return uuid.Nil, uuid.Nil, false
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, fileID, true
}
