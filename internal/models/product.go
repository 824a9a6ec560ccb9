package models

import "gorm.io/gorm"

// Product represents a product in the store. Price is in kobo.
type Product struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	gorm.Model         // CreatedAt, UpdatedAt, DeletedAt
}
