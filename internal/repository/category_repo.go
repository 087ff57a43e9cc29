package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(tx *gorm.DB, category *model.Category) error
	Update(tx *gorm.DB, category *model.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	FindAll(ctx context.Context, includeInactive bool) ([]model.Category, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Create(tx *gorm.DB, category *model.Category) error {
	return tx.Create(category).Error
}

func (r *categoryRepo) Update(tx *gorm.DB, category *model.Category) error {
	return tx.Model(category).Select("name", "description", "is_active", "updated_by").Updates(category).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) FindAll(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	var categories []model.Category
	query := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&categories).Error
	return categories, err
}
