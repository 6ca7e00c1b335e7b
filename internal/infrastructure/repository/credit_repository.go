package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/sangkips/tillpoint/internal/domain/entity"
	domainRepo "github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new credit account repository
func NewCreditRepository(db *gorm.DB) domainRepo.CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) GetByName(ctx context.Context, name string) (*entity.CreditAccount, error) {
	var account entity.CreditAccount
	err := r.db.WithContext(ctx).
		First(&account, "normalized_name = ?", entity.NormalizeCustomerName(name)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &account, err
}

func (r *creditRepository) List(ctx context.Context, search string) ([]entity.CreditAccount, error) {
	var accounts []entity.CreditAccount
	query := r.db.WithContext(ctx).Model(&entity.CreditAccount{})
	if s := entity.NormalizeCustomerName(search); s != "" {
		query = query.Where("normalized_name LIKE ?", "%"+s+"%")
	}
	err := query.Order("customer_name ASC").Find(&accounts).Error
	return accounts, err
}

// Apply adjusts the balance with a guarded UPDATE so concurrent terminals
// never read-modify-write the same row.
func (r *creditRepository) Apply(ctx context.Context, name string, delta decimal.Decimal, entry entity.CreditEntry, create bool) (*entity.CreditAccount, error) {
	norm := entity.NormalizeCustomerName(name)
	var account entity.CreditAccount

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entry.TransactionRef != nil {
			var prior entity.CreditEntry
			err := tx.First(&prior, "action = ? AND transaction_ref = ?", entry.Action, *entry.TransactionRef).Error
			if err == nil {
				return tx.First(&account, "id = ?", prior.AccountID).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		err := tx.First(&account, "normalized_name = ?", norm).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !create {
				return domainRepo.ErrAccountNotFound
			}
			account = entity.CreditAccount{
				CustomerName:   strings.Join(strings.Fields(name), " "),
				NormalizedName: norm,
				Balance:        decimal.Zero,
			}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		result := tx.Model(&entity.CreditAccount{}).
			Where("id = ? AND balance + ? >= 0", account.ID, delta).
			Update("balance", gorm.Expr("balance + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrInsufficientBalance
		}

		if err := tx.First(&account, "id = ?", account.ID).Error; err != nil {
			return err
		}
		entry.AccountID = account.ID
		entry.BalanceAfter = account.Balance
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *creditRepository) Entries(ctx context.Context, name string, limit int) ([]entity.CreditEntry, error) {
	account, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domainRepo.ErrAccountNotFound
	}
	if limit <= 0 {
		limit = 50
	}
	var entries []entity.CreditEntry
	err = r.db.WithContext(ctx).
		Where("account_id = ?", account.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
