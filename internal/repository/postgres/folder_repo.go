package postgres

import (
	"context"

	"github.com/finn/cloud-drive-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type folderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *folderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	return r.db.WithContext(ctx).Create(folder).Error
}

func (r *folderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Folder, error) {
	var folder domain.Folder
	err := r.db.WithContext(ctx).First(&folder, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *folderRepository) ListByParent(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*domain.Folder, error) {
	var folders []*domain.Folder
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	if err := q.Order("created_at ASC").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *folderRepository) Update(ctx context.Context, folder *domain.Folder) error {
	// Save skips nil pointer columns, so moving a folder to root needs an
	// explicit parent_id update.
	return r.db.WithContext(ctx).Model(&domain.Folder{}).
		Where("id = ?", folder.ID).
		Updates(map[string]interface{}{
			"name":       folder.Name,
			"parent_id":  folder.ParentID,
			"updated_at": folder.UpdatedAt,
		}).Error
}

func (r *folderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Folder{}, "id = ?", id).Error
}

// CountChildren counts direct child folders only; files are counted by the
// file repository.
func (r *folderRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Folder{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	return count, err
}
