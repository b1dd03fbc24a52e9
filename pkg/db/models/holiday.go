package models

import "time"

// Holiday is a public holiday. Date is a calendar day at UTC midnight.
type Holiday struct {
	Date        time.Time `gorm:"column:date;primaryKey"`
	LocalName   string    `gorm:"column:local_name;not null;default:''"`
	Name        string    `gorm:"column:name;not null"`
	CountryCode string    `gorm:"column:country_code;not null;default:''"`
	Fixed       bool      `gorm:"column:fixed;not null;default:false"`
	Global      bool      `gorm:"column:global;not null;default:false"`
	LaunchYear  *int      `gorm:"column:launch_year"`
}

func (Holiday) TableName() string { return TableHolidays }
