package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/finn/cloud-drive-backend/internal/domain"
	"github.com/finn/cloud-drive-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxPathDepth bounds ancestor walks. The create/move checks keep the tree
// acyclic, so hitting this bound means corrupted parent links.
const maxPathDepth = 256

type FolderService struct {
	folderRepo repository.FolderRepository
	fileRepo   repository.FileRepository

	// reparentMu serializes the cycle-check-then-write sequence per owner, so
	// two concurrent moves cannot both pass the check and jointly close a loop.
	reparentMu sync.Map // uuid.UUID -> *sync.Mutex
}

func NewFolderService(folderRepo repository.FolderRepository, fileRepo repository.FileRepository) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
	}
}

type FolderContents struct {
	Files   []*domain.File   `json:"files"`
	Folders []*domain.Folder `json:"folders"`
}

type CreateFolderInput struct {
	OwnerID  uuid.UUID
	Name     string
	ParentID *uuid.UUID
}

func (s *FolderService) Create(ctx context.Context, input CreateFolderInput) (*domain.Folder, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || utf8.RuneCountInString(name) > domain.MaxFolderNameLength {
		return nil, domain.ErrInvalidName
	}

	if input.ParentID != nil {
		if _, err := s.ownedFolder(ctx, *input.ParentID, input.OwnerID); err != nil {
			// A parent the requester cannot see is an invalid parent, whether
			// it is absent or someone else's.
			return nil, domain.ErrInvalidParent
		}
	}

	folder := &domain.Folder{
		ID:        uuid.New(),
		OwnerID:   input.OwnerID,
		Name:      name,
		ParentID:  input.ParentID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *FolderService) Get(ctx context.Context, folderID, requesterID uuid.UUID) (*domain.Folder, error) {
	return s.ownedFolder(ctx, folderID, requesterID)
}

// ListRoot returns the direct children of the requester's implicit root.
func (s *FolderService) ListRoot(ctx context.Context, ownerID uuid.UUID) (*FolderContents, error) {
	return s.listChildren(ctx, ownerID, nil)
}

// ListContents returns the direct children of a folder, one level only.
func (s *FolderService) ListContents(ctx context.Context, folderID, requesterID uuid.UUID) (*FolderContents, error) {
	if _, err := s.ownedFolder(ctx, folderID, requesterID); err != nil {
		return nil, err
	}
	return s.listChildren(ctx, requesterID, &folderID)
}

func (s *FolderService) listChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) (*FolderContents, error) {
	folders, err := s.folderRepo.ListByParent(ctx, ownerID, parentID)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListByFolder(ctx, ownerID, parentID)
	if err != nil {
		return nil, err
	}
	return &FolderContents{Files: files, Folders: folders}, nil
}

// ResolvePath walks parent links from the folder to the root and returns the
// ancestors root-first, excluding the folder itself. The walk is bounded: a
// chain longer than maxPathDepth means the parent links are corrupted and the
// walk reports ErrCycleDetected instead of looping.
func (s *FolderService) ResolvePath(ctx context.Context, folderID, requesterID uuid.UUID) ([]*domain.Folder, error) {
	folder, err := s.ownedFolder(ctx, folderID, requesterID)
	if err != nil {
		return nil, err
	}

	path := []*domain.Folder{}
	current := folder
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= maxPathDepth {
			return nil, domain.ErrCycleDetected
		}
		parent, err := s.folderRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling parent link; surface what we have rather than fail
				// the breadcrumb entirely.
				break
			}
			return nil, err
		}
		path = append([]*domain.Folder{parent}, path...)
		current = parent
	}
	return path, nil
}

type UpdateFolderInput struct {
	Name *string
	// Move, when set, changes the parent. A nil inner value moves to root.
	Move     bool
	ParentID *uuid.UUID
}

// Update renames and/or moves a folder. Moves hold the owner's reparent lock
// across the cycle check and the write.
func (s *FolderService) Update(ctx context.Context, folderID, requesterID uuid.UUID, input UpdateFolderInput) (*domain.Folder, error) {
	folder, err := s.ownedFolder(ctx, folderID, requesterID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || utf8.RuneCountInString(name) > domain.MaxFolderNameLength {
			return nil, domain.ErrInvalidName
		}
		folder.Name = name
	}

	if input.Move {
		mu := s.ownerLock(requesterID)
		mu.Lock()
		defer mu.Unlock()

		if err := s.checkReparent(ctx, folder, input.ParentID, requesterID); err != nil {
			return nil, err
		}
		folder.ParentID = input.ParentID
	}

	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Delete removes an empty folder. Non-empty folders are rejected; clients
// must empty a folder before deleting it.
func (s *FolderService) Delete(ctx context.Context, folderID, requesterID uuid.UUID) error {
	folder, err := s.ownedFolder(ctx, folderID, requesterID)
	if err != nil {
		return err
	}

	childFolders, err := s.folderRepo.CountChildren(ctx, folder.ID)
	if err != nil {
		return err
	}
	childFiles, err := s.fileRepo.CountByFolder(ctx, folder.ID)
	if err != nil {
		return err
	}
	if childFolders > 0 || childFiles > 0 {
		return domain.ErrFolderNotEmpty
	}

	return s.folderRepo.Delete(ctx, folder.ID)
}

// checkReparent validates a proposed new parent: it must exist, belong to the
// requester, and not sit below the folder being moved.
func (s *FolderService) checkReparent(ctx context.Context, folder *domain.Folder, newParentID *uuid.UUID, requesterID uuid.UUID) error {
	if newParentID == nil {
		return nil // root is always a valid destination
	}
	if *newParentID == folder.ID {
		return domain.ErrCycleDetected
	}

	parent, err := s.ownedFolder(ctx, *newParentID, requesterID)
	if err != nil {
		return domain.ErrInvalidParent
	}

	// Walk up from the proposed parent; finding the moved folder in its
	// ancestor chain means the move would put the folder under its own
	// descendant.
	current := parent
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= maxPathDepth {
			return domain.ErrCycleDetected
		}
		if *current.ParentID == folder.ID {
			return domain.ErrCycleDetected
		}
		current, err = s.folderRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *FolderService) ownedFolder(ctx context.Context, folderID, requesterID uuid.UUID) (*domain.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if folder.OwnerID != requesterID {
		return nil, domain.ErrForbidden
	}
	return folder, nil
}

func (s *FolderService) ownerLock(ownerID uuid.UUID) *sync.Mutex {
	mu, _ := s.reparentMu.LoadOrStore(ownerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
