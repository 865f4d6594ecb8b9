package service

import (
	"strings"

	"github.com/ivywallet/ivywallet-server/internal/domain"
)

// CategoryService handles category-related business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CategoryInput holds the input for creating or updating a category
type CategoryInput struct {
	Name     string
	Color    *string
	Icon     *string
	OrderNum int32
}

func validateCategoryInput(input *CategoryInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.ErrNameRequired
	}
	if len(input.Name) > domain.MaxNameLength {
		return domain.ErrNameTooLong
	}
	return nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(input CategoryInput) (*domain.Category, error) {
	if err := validateCategoryInput(&input); err != nil {
		return nil, err
	}

	category := &domain.Category{
		Name:     input.Name,
		Color:    input.Color,
		Icon:     input.Icon,
		OrderNum: input.OrderNum,
	}

	return s.categoryRepo.Create(category)
}

// GetCategories retrieves all categories
func (s *CategoryService) GetCategories() ([]*domain.Category, error) {
	return s.categoryRepo.GetAll()
}

// GetCategoryByID retrieves a category by ID
func (s *CategoryService) GetCategoryByID(id int32) (*domain.Category, error) {
	return s.categoryRepo.GetByID(id)
}

// UpdateCategory updates an existing category
func (s *CategoryService) UpdateCategory(id int32, input CategoryInput) (*domain.Category, error) {
	if err := validateCategoryInput(&input); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Color = input.Color
	category.Icon = input.Icon
	category.OrderNum = input.OrderNum

	return s.categoryRepo.Update(category)
}

// DeleteCategory soft-deletes a category
func (s *CategoryService) DeleteCategory(id int32) error {
	return s.categoryRepo.SoftDelete(id)
}
