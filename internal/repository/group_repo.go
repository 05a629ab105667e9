package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/models"
)

// GroupRepository provides access to group records.
type GroupRepository interface {
	GetByID(ctx context.Context, id uint) (models.Group, error)
	ListActive(ctx context.Context) ([]models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	// Deactivate soft-deletes a group; records are never physically removed.
	Deactivate(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository constructs a group repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return models.Group{}, err
	}

	return group, nil
}

func (r *groupRepository) ListActive(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).Where("active = ?", true).
		Order("career, term, name").Find(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).
		Update("active", false).Error
}
