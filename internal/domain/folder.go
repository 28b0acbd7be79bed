package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxFolderNameLength bounds folder and file display names.
const MaxFolderNameLength = 255

// Folder is one node of a user's folder tree. ParentID nil means the folder
// sits in the user's implicit root; there is no stored root record.
type Folder struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID   uuid.UUID  `json:"ownerId" gorm:"type:uuid;not null;index"`
	Name      string     `json:"name" gorm:"not null"`
	ParentID  *uuid.UUID `json:"parentId" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IsRoot reports whether the folder sits directly under the implicit root.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
