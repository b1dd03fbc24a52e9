package models

// Product is a catalog entry. WeightG is nil when the source left it blank.
type Product struct {
	ProductID    string   `gorm:"column:product_id;primaryKey"`
	CategoryName string   `gorm:"column:product_category_name;not null;default:''"`
	WeightG      *float64 `gorm:"column:product_weight_g"`
}

func (Product) TableName() string { return TableProducts }
