package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/planner-shop/internal/model"
	"github.com/tuanvumaihuynh/planner-shop/internal/repository"
	"github.com/tuanvumaihuynh/planner-shop/pkg/validator"
)

type CreateCategoryParams struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error)
	ListAllCategories(ctx context.Context) ([]model.Category, error)
}

type categoryService struct {
	validator    validator.Validator
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(v validator.Validator, categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{
		validator:    v,
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, params CreateCategoryParams) (model.Category, error) {
	params.Name = strings.TrimSpace(params.Name)
	if err := s.validator.Validate(params); err != nil {
		return model.Category{}, fmt.Errorf("validate create category params: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Category{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	category := model.Category{
		ID:          id,
		Name:        params.Name,
		Description: params.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.categoryRepo.CreateCategory(ctx, category); err != nil {
		return model.Category{}, fmt.Errorf("category repository create category: %w", err)
	}

	return category, nil
}

func (s *categoryService) ListAllCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.ListAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("category repository list all categories: %w", err)
	}
	return categories, nil
}
