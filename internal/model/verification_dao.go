package model

import (
	"context"

	"gorm.io/gorm"
)

const maxHistoryLimit = 200

// VerificationsDao defines the interface for database operations on the verifications table.
type VerificationsDao interface {
	Insert(ctx context.Context, data *Verifications) error
	FindByTxHash(ctx context.Context, chain, txHash string, limit int) ([]*Verifications, error)
	FindRecent(ctx context.Context, limit int) ([]*Verifications, error)
}

type verificationsDao struct {
	db *gorm.DB
}

// NewVerificationsDao creates a new instance of VerificationsDao.
func NewVerificationsDao(db *gorm.DB) VerificationsDao {
	return &verificationsDao{
		db: db,
	}
}

// Migrate creates or updates the verifications table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Verifications{})
}

// Insert adds a new record to the verifications table.
func (d *verificationsDao) Insert(ctx context.Context, data *Verifications) error {
	return d.db.WithContext(ctx).Create(data).Error
}

// FindByTxHash lists the newest results for a hash; an empty chain matches all chains.
func (d *verificationsDao) FindByTxHash(ctx context.Context, chain, txHash string, limit int) ([]*Verifications, error) {
	var resp []*Verifications
	query := d.db.WithContext(ctx).Where("tx_hash = ?", txHash)
	if chain != "" {
		query = query.Where("chain = ?", chain)
	}
	err := query.Order("id DESC").Limit(clampLimit(limit)).Find(&resp).Error
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// FindRecent retrieves the newest records across all hashes.
func (d *verificationsDao) FindRecent(ctx context.Context, limit int) ([]*Verifications, error) {
	var resp []*Verifications
	err := d.db.WithContext(ctx).Order("id DESC").Limit(clampLimit(limit)).Find(&resp).Error
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
