package models

import (
	"time"

	"gorm.io/datatypes"
)

type Shop struct {
	ID            uint           `gorm:"primaryKey"`
	ShopOwnerID   uint           `gorm:"not null;index"`
	ShopOwner     ShopOwner      `gorm:"foreignKey:ShopOwnerID"`
	UserID        uint           `gorm:"not null;index"`
	Name          string         `gorm:"size:150;not null"`
	Address       string         `gorm:"size:255"`
	Description   string         `gorm:"type:text"`
	ContactNumber string         `gorm:"size:20"`
	Locations     datatypes.JSON `gorm:"type:json"`

	Images []ShopImage `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ShopImage struct {
	ID         uint   `gorm:"primaryKey"`
	ShopID     uint   `gorm:"not null;index"`
	ImagePath  string `gorm:"size:255;not null"`
	OrderIndex int    `gorm:"not null;default:0"`
	AltText    string `gorm:"size:150"`
	CreatedAt  time.Time
}
