package model

import (
	"time"

	"gorm.io/gorm"
)

// ExpenseCategory groups expenses; categories whose name contains "commission"
// count as distribution cost in the revenue KPIs.
type ExpenseCategory struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	HotelID   uint           `json:"hotel_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Expense is a single cost record
type Expense struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	HotelID     uint           `json:"hotel_id" gorm:"index;not null"`
	CategoryID  uint           `json:"category_id" gorm:"index;not null"`
	Amount      float64        `json:"amount" gorm:"not null"`
	Date        time.Time      `json:"date" gorm:"index;not null"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
