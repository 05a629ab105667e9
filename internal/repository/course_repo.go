package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/models"
)

// CourseRepository provides access to course (materia) records.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	ListActiveByCareer(ctx context.Context, career string) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Deactivate(ctx context.Context, id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) ListActiveByCareer(ctx context.Context, career string) ([]models.Course, error) {
	var courses []models.Course
	query := r.db.WithContext(ctx).Where("active = ?", true)
	if career != "" {
		query = query.Where("career = ?", career)
	}
	if err := query.Order("term, name").Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

func (r *courseRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).
		Update("active", false).Error
}
