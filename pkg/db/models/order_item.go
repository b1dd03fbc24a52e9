package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a single line of an order. ItemSeq is the 1-based position of
// the item within its order.
type OrderItem struct {
	OrderID           string          `gorm:"column:order_id;primaryKey"`
	ItemSeq           int             `gorm:"column:order_item_id;primaryKey"`
	ProductID         string          `gorm:"column:product_id;not null"`
	SellerID          string          `gorm:"column:seller_id;not null;default:''"`
	ShippingLimitDate *time.Time      `gorm:"column:shipping_limit_date"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	FreightValue      decimal.Decimal `gorm:"column:freight_value;type:numeric(12,2);not null"`
}

func (OrderItem) TableName() string { return TableOrderItems }

// Revenue is what the customer paid for the item, freight included.
func (i OrderItem) Revenue() decimal.Decimal {
	return i.Price.Add(i.FreightValue)
}
