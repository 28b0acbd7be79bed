package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// File is the metadata record for one uploaded blob. The bytes themselves live
// in blob storage under StorageKey; the key is never exposed to clients.
// FolderID nil means the file sits in the owner's implicit root.
type File struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     uuid.UUID      `json:"ownerId" gorm:"type:uuid;not null;index"`
	FolderID    *uuid.UUID     `json:"folderId" gorm:"type:uuid;index"`
	Name        string         `json:"name" gorm:"not null"`
	Size        int64          `json:"size" gorm:"not null"`
	ContentType string         `json:"type"`
	StorageKey  string         `json:"-" gorm:"uniqueIndex;not null"`
	Tags        datatypes.JSON `json:"tags,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
