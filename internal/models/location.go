package models

import "time"

type Location struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:150;not null"`
	Description string  `gorm:"type:text"`
	District    string  `gorm:"size:100;index"`
	Province    string  `gorm:"size:100"`
	Category    string  `gorm:"size:100;index"` // beach, heritage, wildlife etc.
	Latitude    float64 `gorm:"not null"`
	Longitude   float64 `gorm:"not null"`

	Images []LocationImage `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type LocationImage struct {
	ID         uint   `gorm:"primaryKey"`
	LocationID uint   `gorm:"not null;index"`
	ImagePath  string `gorm:"size:255;not null"`
	OrderIndex int    `gorm:"not null;default:0"`
	AltText    string `gorm:"size:150"`
	CreatedAt  time.Time
}
