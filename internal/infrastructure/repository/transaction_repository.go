package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint/internal/domain/entity"
	domainRepo "github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/pkg/pagination"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items", byPosition).
		Preload("Payments", byPosition).
		First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tx, err
}

func (r *transactionRepository) List(ctx context.Context, params *domainRepo.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	var txs []entity.Transaction
	var total int64

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}

	query := r.db.WithContext(ctx).Model(&entity.Transaction{})
	if params.TerminalID != "" {
		query = query.Where("terminal_id = ?", params.TerminalID)
	}
	if params.CustomerName != "" {
		query = query.Where("LOWER(customer_name) = ?", entity.NormalizeCustomerName(params.CustomerName))
	}
	if params.CreditOnly {
		query = query.Where("is_credit_sale = ?", true)
	}
	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items", byPosition).
		Preload("Payments", byPosition).
		Order("created_at DESC").
		Find(&txs).Error

	return txs, total, err
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
