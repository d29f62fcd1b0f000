package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/job-matcher/internal/models"
)

// JobRepository is the Postgres catalog of job postings. Search runs against
// the vector store; this side exists for listing, auditing and admin ops.
// Upsert mirrors the vector store's replace-on-duplicate-id policy.
type JobRepository interface {
	Upsert(job *models.JobPosting) error
	FindByID(id uuid.UUID) (*models.JobPosting, error)
	List(limit, offset int) ([]models.JobPosting, error)
	Count() (int64, error)
	Delete(id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Upsert implements JobRepository.
func (r *jobRepository) Upsert(job *models.JobPosting) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(job).Error
	if err != nil {
		return fmt.Errorf("failed to upsert job: %w", err)
	}

	return nil
}

// FindByID implements JobRepository.
func (r *jobRepository) FindByID(id uuid.UUID) (*models.JobPosting, error) {
	var job models.JobPosting
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %w", err)
		}

		return nil, fmt.Errorf("failed to find job: %w", err)
	}

	return &job, nil
}

// List implements JobRepository.
func (r *jobRepository) List(limit, offset int) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// Count implements JobRepository.
func (r *jobRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.JobPosting{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	return count, nil
}

// Delete implements JobRepository.
func (r *jobRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.JobPosting{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete job: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("job not found")
	}

	return nil
}
