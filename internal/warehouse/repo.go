package warehouse

import (
	"gorm.io/gorm"

	"github.com/angelmondragon/olist-etl/pkg/db/models"
)

// Models lists one value per warehouse table, in load order.
func Models() []any {
	return []any{
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Product{},
		&models.CategoryTranslation{},
		&models.Holiday{},
	}
}

// Repository writes warehouse tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to warehouse writes.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceWithTx deletes every row of model's table and inserts rows in
// batches using the provided transaction. rows must be a slice of model.
func (r *Repository) ReplaceWithTx(tx *gorm.DB, model any, rows any, count, batchSize int) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}

// Count returns the number of rows stored for model.
func (r *Repository) Count(tx *gorm.DB, model any) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	var n int64
	err := tx.Model(model).Count(&n).Error
	return n, err
}
