package models

import "time"

// User represents a customer or administrator of the store.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username    string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email       string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password    string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Phone       string    `json:"phone" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	Address     string    `json:"address" gorm:"type:text"`
	City        string    `json:"city" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	PostalCode  string    `json:"postal_code" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	Country     string    `json:"country" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
