package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/models"
)

// ErrVersionConflict signals that a conditional write lost the race against a
// concurrent update and should be retried from a fresh read.
var ErrVersionConflict = errors.New("project was modified concurrently")

// ProjectFilter narrows and paginates public project listings.
type ProjectFilter struct {
	GroupID  uint
	Search   string
	Page     int
	PageSize int
}

// ProjectRepository provides access to project aggregates.
type ProjectRepository interface {
	GetByID(ctx context.Context, id uint) (models.Project, error)
	// Create inserts the project and claims the leader's project
	// reference inside one transaction.
	Create(ctx context.Context, project *models.Project) error
	// UpdateVersioned persists the project only when its version still
	// matches the one it was read at, then bumps the version.
	UpdateVersioned(ctx context.Context, project *models.Project) error
	// UpdateVersionedMembership persists a membership change together
	// with the affected user's project reference (nil clears it) inside
	// one transaction, guarded by the same version check. Either both
	// sides of the membership invariant move or neither does.
	UpdateVersionedMembership(ctx context.Context, project *models.Project, memberID uint, memberProject *uint) error
	// DeleteCascade removes the project, its blocks and releases every
	// member's project reference inside one transaction.
	DeleteCascade(ctx context.Context, project models.Project) error
	ReplaceBlocks(ctx context.Context, projectID uint, blocks []models.ContentBlock) error
	// ListPublic returns public projects in ranking order: points desc,
	// votes desc, oldest first.
	ListPublic(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository constructs a project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Blocks", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index")
	}).First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", project.LeaderID).
			Update("project_id", project.ID).Error
	})
}

func applyVersioned(db *gorm.DB, project *models.Project) error {
	readVersion := project.Version
	project.Version++

	tx := db.Model(&models.Project{}).
		Where("id = ? AND version = ?", project.ID, readVersion).
		Omit("Blocks", "id", "created_at").
		Select("*").
		Updates(project)
	if tx.Error != nil {
		project.Version = readVersion
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		project.Version = readVersion
		return ErrVersionConflict
	}

	return nil
}

func (r *projectRepository) UpdateVersioned(ctx context.Context, project *models.Project) error {
	return applyVersioned(r.db.WithContext(ctx), project)
}

func (r *projectRepository) UpdateVersionedMembership(ctx context.Context, project *models.Project, memberID uint, memberProject *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyVersioned(tx, project); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", memberID).
			Update("project_id", memberProject).Error; err != nil {
			project.Version--
			return err
		}
		return nil
	})
}

func (r *projectRepository) DeleteCascade(ctx context.Context, project models.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(project.MemberIDs) > 0 {
			ids := []uint(project.MemberIDs)
			if err := tx.Model(&models.User{}).Where("id IN ?", ids).
				Update("project_id", nil).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ContentBlock{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Evaluation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, project.ID).Error
	})
}

func (r *projectRepository) ReplaceBlocks(ctx context.Context, projectID uint, blocks []models.ContentBlock) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ContentBlock{}).Error; err != nil {
			return err
		}
		if len(blocks) == 0 {
			return nil
		}
		for i := range blocks {
			blocks[i].ID = 0
			blocks[i].ProjectID = projectID
		}
		return tx.Create(&blocks).Error
	})
}

func (r *projectRepository) ListPublic(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{}).Where("public = ?", true)
	if filter.GroupID != 0 {
		query = query.Where("group_id = ?", filter.GroupID)
	}
	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var projects []models.Project
	if err := query.Order("points_total DESC, vote_count DESC, created_at ASC").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}
