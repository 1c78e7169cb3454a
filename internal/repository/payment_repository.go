package repository

import (
	"context"

	"github.com/noah-isme/smart-tuition/internal/models"
)

// PaymentRepository persists the settlement audit log.
type PaymentRepository struct {
	docs *DocumentRepository
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(docs *DocumentRepository) *PaymentRepository {
	return &PaymentRepository{docs: docs}
}

// List returns every recorded payment in insertion order.
func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if _, err := r.docs.readJSON(ctx, KeyPayments, &payments); err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

// Append adds one entry and rewrites the log.
func (r *PaymentRepository) Append(ctx context.Context, payment models.Payment) error {
	payments, err := r.List(ctx)
	if err != nil {
		return err
	}
	payments = append(payments, payment)
	return r.docs.writeJSON(ctx, KeyPayments, payments)
}
