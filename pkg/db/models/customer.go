package models

type Customer struct {
	CustomerID       string `gorm:"column:customer_id;primaryKey"`
	CustomerUniqueID string `gorm:"column:customer_unique_id;not null;default:''"`
	ZipCodePrefix    string `gorm:"column:customer_zip_code_prefix;not null;default:''"`
	City             string `gorm:"column:customer_city;not null;default:''"`
	State            string `gorm:"column:customer_state;not null"`
}

func (Customer) TableName() string { return TableCustomers }

// CategoryTranslation maps a portuguese category name to english.
type CategoryTranslation struct {
	CategoryName        string `gorm:"column:product_category_name;primaryKey"`
	CategoryNameEnglish string `gorm:"column:product_category_name_english;not null"`
}

func (CategoryTranslation) TableName() string { return TableTranslations }
