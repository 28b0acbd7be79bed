package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finn/cloud-drive-backend/internal/api/middleware"
	"github.com/finn/cloud-drive-backend/internal/domain"
	"github.com/finn/cloud-drive-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type FolderHandler struct {
	folderService *service.FolderService
}

func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

type UpdateFolderRequest struct {
	Name     *string         `json:"name"`
	ParentID json.RawMessage `json:"parentId"` // absent = keep, null = move to root, uuid = move
}

// ListRoot returns the folders sitting directly in the requester's root.
func (h *FolderHandler) ListRoot(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	contents, err := h.folderService.ListRoot(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contents.Folders)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	parentID, err := parseOptionalID(req.ParentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "parentId must be a UUID")
		return
	}

	folder, err := h.folderService.Create(r.Context(), service.CreateFolderInput{
		OwnerID:  userID,
		Name:     req.Name,
		ParentID: parentID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	folder, err := h.folderService.Get(r.Context(), folderID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

// Contents returns the direct children of a folder: one level, files and
// folders together.
func (h *FolderHandler) Contents(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	contents, err := h.folderService.ListContents(r.Context(), folderID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contents)
}

// Path returns the breadcrumb for a folder: its ancestors root-first,
// excluding the folder itself.
func (h *FolderHandler) Path(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	path, err := h.folderService.ResolvePath(r.Context(), folderID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, path)
}

func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	var req UpdateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	input := service.UpdateFolderInput{Name: req.Name}
	if len(req.ParentID) > 0 {
		input.Move = true
		if string(req.ParentID) != "null" {
			var s string
			if err := json.Unmarshal(req.ParentID, &s); err != nil {
				writeError(w, http.StatusBadRequest, "validation_error", "parentId must be a UUID or null")
				return
			}
			id, err := uuid.Parse(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "validation_error", "parentId must be a UUID or null")
				return
			}
			input.ParentID = &id
		}
	}

	folder, err := h.folderService.Update(r.Context(), folderID, userID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, folderID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	if err := h.folderService.Delete(r.Context(), folderID, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *FolderHandler) requestIDs(w http.ResponseWriter, r *http.Request) (userID, folderID uuid.UUID, ok bool) {
	userID, found := middleware.GetUserID(r.Context())
	if !found {
		writeDomainError(w, domain.ErrUnauthenticated)
		return uuid.Nil, uuid.Nil, false
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, folderID, true
}

func parseOptionalID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
