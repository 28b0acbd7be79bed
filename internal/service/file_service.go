package service

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/finn/cloud-drive-backend/internal/domain"
	"github.com/finn/cloud-drive-backend/internal/repository"
	"github.com/finn/cloud-drive-backend/internal/storage"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

type FileService struct {
	fileRepo   repository.FileRepository
	folderRepo repository.FolderRepository
	blobs      storage.BlobStore

	maxUploadBytes int64

	// One weighted semaphore per user bounds concurrent upload streams, so a
	// single user cannot monopolize upload bandwidth.
	uploadSlots  sync.Map // uuid.UUID -> *semaphore.Weighted
	slotsPerUser int64
}

func NewFileService(fileRepo repository.FileRepository, folderRepo repository.FolderRepository, blobs storage.BlobStore, maxUploadBytes int64, maxConcurrentUploadsPerUser int) *FileService {
	if maxConcurrentUploadsPerUser < 1 {
		maxConcurrentUploadsPerUser = 1
	}
	return &FileService{
		fileRepo:       fileRepo,
		folderRepo:     folderRepo,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
		slotsPerUser:   int64(maxConcurrentUploadsPerUser),
	}
}

type UploadInput struct {
	OwnerID     uuid.UUID
	FolderID    *uuid.UUID
	Name        string
	ContentType string
	// DeclaredSize is the client-declared length, used to reject oversized
	// uploads before any bytes are streamed. Zero means unknown.
	DeclaredSize int64
	Body         io.Reader
}

// Upload streams the body to blob storage and records metadata only once the
// blob write is confirmed. Either a complete File row with the true size
// appears, or nothing does.
func (s *FileService) Upload(ctx context.Context, input UploadInput) (*domain.File, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || utf8.RuneCountInString(name) > domain.MaxFolderNameLength {
		return nil, domain.ErrInvalidName
	}
	if input.DeclaredSize > s.maxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	if input.FolderID != nil {
		folder, err := s.folderRepo.GetByID(ctx, *input.FolderID)
		if err != nil || folder.OwnerID != input.OwnerID {
			return nil, domain.ErrInvalidParent
		}
	}

	slots := s.userSlots(input.OwnerID)
	if err := slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer slots.Release(1)

	// One byte past the cap distinguishes "exactly at the limit" from "over".
	limited := io.LimitReader(input.Body, s.maxUploadBytes+1)

	// Spool to disk first: Put may be attempted twice, and a retry must replay
	// the full payload, not whatever a failed attempt left unread.
	spool, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return nil, domain.ErrStorageFailure
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	size, err := io.Copy(spool, limited)
	if err != nil {
		return nil, domain.ErrStorageFailure
	}
	if size > s.maxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	storageKey := uuid.New().String()
	err = withStorageRetry(ctx, func(ctx context.Context) error {
		if _, err := spool.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err := s.blobs.Put(ctx, storageKey, spool)
		return err
	})
	if err != nil {
		return nil, domain.ErrStorageFailure
	}

	file := &domain.File{
		ID:          uuid.New(),
		OwnerID:     input.OwnerID,
		FolderID:    input.FolderID,
		Name:        name,
		Size:        size,
		ContentType: input.ContentType,
		StorageKey:  storageKey,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Metadata write failed after the blob landed; remove the blob so no
		// orphan survives.
		s.discardBlob(ctx, storageKey)
		return nil, err
	}
	return file, nil
}

func (s *FileService) Get(ctx context.Context, fileID, requesterID uuid.UUID) (*domain.File, error) {
	return s.ownedFile(ctx, fileID, requesterID)
}

// Download returns the file metadata and a stream of its bytes. The caller
// closes the stream.
func (s *FileService) Download(ctx context.Context, fileID, requesterID uuid.UUID) (*domain.File, io.ReadCloser, error) {
	file, err := s.ownedFile(ctx, fileID, requesterID)
	if err != nil {
		return nil, nil, err
	}

	var body io.ReadCloser
	err = withStorageRetry(ctx, func(ctx context.Context) error {
		rc, err := s.blobs.Get(ctx, file.StorageKey)
		body = rc
		return err
	})
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, domain.ErrStorageFailure
	}
	return file, body, nil
}

// ListRoot returns the files sitting directly in the owner's implicit root.
func (s *FileService) ListRoot(ctx context.Context, ownerID uuid.UUID) ([]*domain.File, error) {
	return s.fileRepo.ListByFolder(ctx, ownerID, nil)
}

// Move changes the containing folder; nil moves the file to root. The target
// must belong to the same owner.
func (s *FileService) Move(ctx context.Context, fileID, requesterID uuid.UUID, folderID *uuid.UUID) (*domain.File, error) {
	file, err := s.ownedFile(ctx, fileID, requesterID)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		folder, err := s.folderRepo.GetByID(ctx, *folderID)
		if err != nil || folder.OwnerID != requesterID {
			return nil, domain.ErrInvalidParent
		}
	}

	file.FolderID = folderID
	file.UpdatedAt = time.Now()
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// Delete removes the metadata row and then the blob. A blob that outlives a
// failed delete is garbage, never a dangling metadata row.
func (s *FileService) Delete(ctx context.Context, fileID, requesterID uuid.UUID) error {
	file, err := s.ownedFile(ctx, fileID, requesterID)
	if err != nil {
		return err
	}

	if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
		return err
	}
	s.discardBlob(ctx, file.StorageKey)
	return nil
}

func (s *FileService) ownedFile(ctx context.Context, fileID, requesterID uuid.UUID) (*domain.File, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if file.OwnerID != requesterID {
		return nil, domain.ErrForbidden
	}
	return file, nil
}

func (s *FileService) userSlots(userID uuid.UUID) *semaphore.Weighted {
	slots, _ := s.uploadSlots.LoadOrStore(userID, semaphore.NewWeighted(s.slotsPerUser))
	return slots.(*semaphore.Weighted)
}

func (s *FileService) discardBlob(ctx context.Context, key string) {
	// Best effort; a leaked blob is unreferenced and harmless.
	_ = s.blobs.Delete(ctx, key)
}

// withStorageRetry retries a transient blob failure once after a short pause.
// Validation errors never reach here; blob-not-found is terminal.
func withStorageRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
			return retry.RetryableError(err)
		}
		return err
	})
}
