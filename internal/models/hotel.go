package models

import (
	"time"

	"gorm.io/datatypes"
)

type Hotel struct {
	ID            uint           `gorm:"primaryKey"`
	HotelOwnerID  uint           `gorm:"not null;index"`
	HotelOwner    HotelOwner     `gorm:"foreignKey:HotelOwnerID"`
	UserID        uint           `gorm:"not null;index"`
	Name          string         `gorm:"size:150;not null"`
	Address       string         `gorm:"size:255"`
	Description   string         `gorm:"type:text"`
	ContactNumber string         `gorm:"size:20"`
	Locations     datatypes.JSON `gorm:"type:json"`

	Images []HotelImage `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type HotelImage struct {
	ID         uint   `gorm:"primaryKey"`
	HotelID    uint   `gorm:"not null;index"`
	ImagePath  string `gorm:"size:255;not null"`
	OrderIndex int    `gorm:"not null;default:0"`
	AltText    string `gorm:"size:150"`
	CreatedAt  time.Time
}
