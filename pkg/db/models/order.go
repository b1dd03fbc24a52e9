package models

import (
	"time"

	"github.com/angelmondragon/olist-etl/pkg/enums"
)

// Order is one purchase of the olist marketplace.
type Order struct {
	OrderID               string            `gorm:"column:order_id;primaryKey"`
	CustomerID            string            `gorm:"column:customer_id;not null;default:''"`
	Status                enums.OrderStatus `gorm:"column:order_status;not null"`
	PurchaseTimestamp     time.Time         `gorm:"column:order_purchase_timestamp;not null"`
	ApprovedAt            *time.Time        `gorm:"column:order_approved_at"`
	DeliveredCarrierDate  *time.Time        `gorm:"column:order_delivered_carrier_date"`
	DeliveredCustomerDate *time.Time        `gorm:"column:order_delivered_customer_date"`
	EstimatedDeliveryDate *time.Time        `gorm:"column:order_estimated_delivery_date"`
	CustomerState         string            `gorm:"column:customer_state;not null;default:''"`
}

func (Order) TableName() string { return TableOrders }

// IsDelivered reports whether the order reached the customer.
func (o Order) IsDelivered() bool {
	return o.Status == enums.OrderStatusDelivered
}
