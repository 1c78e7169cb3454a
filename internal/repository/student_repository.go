package repository

import (
	"context"

	"github.com/noah-isme/smart-tuition/internal/models"
)

// StudentRepository persists the student list as one blob.
type StudentRepository struct {
	docs *DocumentRepository
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(docs *DocumentRepository) *StudentRepository {
	return &StudentRepository{docs: docs}
}

// Load returns the stored list, or an empty list when nothing was saved yet.
func (r *StudentRepository) Load(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if _, err := r.docs.readJSON(ctx, KeyStudents, &students); err != nil {
		return nil, err
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// Save replaces the whole list.
func (r *StudentRepository) Save(ctx context.Context, students []models.Student) error {
	if students == nil {
		students = []models.Student{}
	}
	return r.docs.writeJSON(ctx, KeyStudents, students)
}
