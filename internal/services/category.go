package services

import (
	"context"
	"strings"

	"github.com/asyncrace/asyncrace/internal/errors"
	"github.com/asyncrace/asyncrace/internal/logger"
	"github.com/asyncrace/asyncrace/internal/models"
	"github.com/asyncrace/asyncrace/internal/repository"
)

// CategoryService handles race category operations
type CategoryService struct {
	log  logger.Logger
	repo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(log logger.Logger, repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{
		log:  log,
		repo: repo,
	}
}

// ListCategories returns all race categories
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// GetCategory returns a race category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	cat, err := s.repo.GetCategory(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("category %d not found", id)
	}
	return cat, err
}

// CreateCategory creates a new race category
func (s *CategoryService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.Validation("category name is required")
	}

	id, err := s.repo.CreateCategory(ctx, name, description)
	if err != nil {
		return nil, err
	}

	s.log.Info("Category created", "category_id", id, "name", name)
	return s.repo.GetCategory(ctx, int(id))
}
