package service

import (
	"github.com/finn/cloud-drive-backend/internal/config"
	"github.com/finn/cloud-drive-backend/internal/repository"
	"github.com/finn/cloud-drive-backend/internal/storage"
)

type Services struct {
	Auth   *AuthService
	Folder *FolderService
	File   *FileService
}

func NewServices(repos *repository.Repositories, blobs storage.BlobStore, cfg *config.Config) *Services {
	return &Services{
		Auth:   NewAuthService(repos.User, repos.Session, cfg),
		Folder: NewFolderService(repos.Folder, repos.File),
		File:   NewFileService(repos.File, repos.Folder, blobs, cfg.MaxUploadBytes, cfg.MaxConcurrentUploadsUser),
	}
}
