package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/finn/cloud-drive-backend/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:     fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
	}
}

// WithName sets the display name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         b.name,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

// BuildAndAuthenticate creates a user via the API and returns the user and token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"name":     b.name,
		"email":    b.email,
		"password": b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.URL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:    userID,
		Name:  authResp.User.Name,
		Email: authResp.User.Email,
	}

	return user, authResp.Token
}

// FolderBuilder creates test folders with a builder pattern
type FolderBuilder struct {
	owner    *domain.User
	name     string
	parentID *uuid.UUID
}

// NewFolderBuilder creates a new FolderBuilder with default values
func NewFolderBuilder(owner *domain.User) *FolderBuilder {
	return &FolderBuilder{
		owner: owner,
		name:  fmt.Sprintf("folder_%s", uuid.New().String()[:8]),
	}
}

// WithName sets the folder name
func (b *FolderBuilder) WithName(name string) *FolderBuilder {
	b.name = name
	return b
}

// WithParent sets the parent folder
func (b *FolderBuilder) WithParent(parent *domain.Folder) *FolderBuilder {
	b.parentID = &parent.ID
	return b
}

// Build creates the folder in the database
func (b *FolderBuilder) Build(t *testing.T, db *gorm.DB) *domain.Folder {
	t.Helper()

	folder := &domain.Folder{
		ID:        uuid.New(),
		OwnerID:   b.owner.ID,
		Name:      b.name,
		ParentID:  b.parentID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := db.Create(folder).Error; err != nil {
		t.Fatalf("failed to create folder: %v", err)
	}

	return folder
}

// FileBuilder creates test file metadata rows with a builder pattern
type FileBuilder struct {
	owner      *domain.User
	name       string
	folderID   *uuid.UUID
	size       int64
	storageKey string
}

// NewFileBuilder creates a new FileBuilder with default values
func NewFileBuilder(owner *domain.User) *FileBuilder {
	return &FileBuilder{
		owner:      owner,
		name:       fmt.Sprintf("file_%s.txt", uuid.New().String()[:8]),
		size:       42,
		storageKey: uuid.New().String(),
	}
}

// WithName sets the file name
func (b *FileBuilder) WithName(name string) *FileBuilder {
	b.name = name
	return b
}

// WithFolder sets the containing folder
func (b *FileBuilder) WithFolder(folder *domain.Folder) *FileBuilder {
	b.folderID = &folder.ID
	return b
}

// WithSize sets the byte size
func (b *FileBuilder) WithSize(size int64) *FileBuilder {
	b.size = size
	return b
}

// Build creates the file metadata row in the database
func (b *FileBuilder) Build(t *testing.T, db *gorm.DB) *domain.File {
	t.Helper()

	file := &domain.File{
		ID:          uuid.New(),
		OwnerID:     b.owner.ID,
		FolderID:    b.folderID,
		Name:        b.name,
		Size:        b.size,
		ContentType: "text/plain",
		StorageKey:  b.storageKey,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := db.Create(file).Error; err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	return file
}
