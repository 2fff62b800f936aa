package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/recruitment-assistant/internal/models"
)

var ErrJobNotFound = errors.New("job description not found")

type JobRepository interface {
	Create(job *models.JobDescription) error
	FindByID(id uint) (*models.JobDescription, error)
	List() ([]models.JobDescription, error)
	Delete(id uint) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Create implements JobRepository.
func (r *jobRepository) Create(job *models.JobDescription) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job description: %w", err)
	}

	return nil
}

// FindByID implements JobRepository.
func (r *jobRepository) FindByID(id uint) (*models.JobDescription, error) {
	var job models.JobDescription
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}

		return nil, fmt.Errorf("failed to find job description: %w", err)
	}

	return &job, nil
}

// List implements JobRepository. Newest postings come first.
func (r *jobRepository) List() ([]models.JobDescription, error) {
	var jobs []models.JobDescription
	if err := r.db.Order("id DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list job descriptions: %w", err)
	}

	return jobs, nil
}

// Delete implements JobRepository.
func (r *jobRepository) Delete(id uint) error {
	result := r.db.Delete(&models.JobDescription{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete job description: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}
