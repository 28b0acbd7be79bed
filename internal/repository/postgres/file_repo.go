package postgres

import (
	"context"

	"github.com/finn/cloud-drive-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *fileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *domain.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	var file domain.File
	err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]*domain.File, error) {
	var files []*domain.File
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if folderID == nil {
		q = q.Where("folder_id IS NULL")
	} else {
		q = q.Where("folder_id = ?", *folderID)
	}
	if err := q.Order("created_at ASC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepository) Update(ctx context.Context, file *domain.File) error {
	return r.db.WithContext(ctx).Model(&domain.File{}).
		Where("id = ?", file.ID).
		Updates(map[string]interface{}{
			"name":       file.Name,
			"folder_id":  file.FolderID,
			"tags":       file.Tags,
			"updated_at": file.UpdatedAt,
		}).Error
}

func (r *fileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.File{}, "id = ?", id).Error
}

func (r *fileRepository) CountByFolder(ctx context.Context, folderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.File{}).
		Where("folder_id = ?", folderID).
		Count(&count).Error
	return count, err
}
