package models

import (
	"time"

	"gorm.io/datatypes"
)

type Vehicle struct {
	ID             uint           `gorm:"primaryKey"`
	VehicleOwnerID uint           `gorm:"not null;index"`
	VehicleOwner   VehicleOwner   `gorm:"foreignKey:VehicleOwnerID"`
	UserID         uint           `gorm:"not null;index"`
	Type           string         `gorm:"size:50;not null"` // car, van, tuk-tuk, bus
	Model          string         `gorm:"size:100"`
	Capacity       int            `gorm:"not null;default:1"`
	PricePerDay    float64        `gorm:"not null;default:0"`
	Locations      datatypes.JSON `gorm:"type:json"`
	Description    string         `gorm:"type:text"`

	Images []VehicleImage `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type VehicleImage struct {
	ID         uint   `gorm:"primaryKey"`
	VehicleID  uint   `gorm:"not null;index"`
	ImagePath  string `gorm:"size:255;not null"`
	OrderIndex int    `gorm:"not null;default:0"`
	AltText    string `gorm:"size:150"`
	CreatedAt  time.Time
}
