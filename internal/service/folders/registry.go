// Package folders implements the folder system: the folder registry, the
// membership index, the ordering store and the operation gateway that
// fronts them.
package folders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"binder/internal/config"
	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"
	"binder/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type folderRegistry struct {
	folderRepo     repositories.FolderRepository
	membershipRepo repositories.MembershipRepository
	logger         *slog.Logger
}

// NewFolderRegistry creates a new folder registry
func NewFolderRegistry(
	folderRepo repositories.FolderRepository,
	membershipRepo repositories.MembershipRepository,
	logger *slog.Logger,
) services.FolderRegistry {
	return &folderRegistry{
		folderRepo:     folderRepo,
		membershipRepo: membershipRepo,
		logger:         logger,
	}
}

// CreateFolder creates a new folder
func (s *folderRegistry) CreateFolder(ctx context.Context, kind models.Kind, name string) (*models.Folder, error) {
	name, err := validateFolderName(kind, name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	folder := &models.Folder{
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"kind", kind,
		"name", folder.Name,
	)
	return folder, nil
}

// RenameFolder renames a folder
func (s *folderRegistry) RenameFolder(ctx context.Context, kind models.Kind, id, name string) (*models.Folder, error) {
	name, err := validateFolderName(kind, name)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if folder.Name == name {
		return folder, nil
	}

	folder.Name = name
	folder.UpdatedAt = time.Now().UTC()
	if err := s.folderRepo.UpdateName(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", id, "kind", kind, "name", name)
	return folder, nil
}

// DeleteFolder deletes an empty folder.
// The member count is checked first for a useful message; the foreign key
// on memberships catches records assigned between the check and the delete.
func (s *folderRegistry) DeleteFolder(ctx context.Context, kind models.Kind, id string) error {
	if _, err := s.folderRepo.GetByID(ctx, kind, id); err != nil {
		return err
	}

	count, err := s.membershipRepo.CountMembers(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("count members of folder %s: %w", id, err)
	}
	if count > 0 {
		return &domain.NotEmptyError{FolderID: id, MemberCount: count}
	}

	if err := s.folderRepo.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("folder vanished before delete", "id", id, "kind", kind)
		}
		return err
	}

	s.logger.Info("folder deleted", "id", id, "kind", kind)
	return nil
}

// GetFolder retrieves a folder
func (s *folderRegistry) GetFolder(ctx context.Context, kind models.Kind, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, kind, id)
}

// ListFolders returns every folder of a kind
func (s *folderRegistry) ListFolders(ctx context.Context, kind models.Kind) ([]models.Folder, error) {
	return s.folderRepo.List(ctx, kind)
}

// ListFolderSummaries returns every folder of a kind with its member count
func (s *folderRegistry) ListFolderSummaries(ctx context.Context, kind models.Kind) ([]models.FolderSummary, error) {
	return s.folderRepo.ListSummaries(ctx, kind)
}

// PurgeFolders deletes every folder of a kind
func (s *folderRegistry) PurgeFolders(ctx context.Context, kind models.Kind) (int64, error) {
	n, err := s.folderRepo.DeleteAll(ctx, kind)
	if err != nil {
		return 0, err
	}
	s.logger.Info("folders purged", "kind", kind, "count", n)
	return n, nil
}

// validateFolderName trims the name and checks kind and length
func validateFolderName(kind models.Kind, name string) (string, error) {
	if !kind.Valid() {
		return "", &domain.ValidationError{Message: fmt.Sprintf("unknown kind %q", kind)}
	}
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.RuneLength(1, config.MaxFolderNameLength),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return name, nil
}
