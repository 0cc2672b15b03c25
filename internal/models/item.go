package models

import "time"

// Item is an admin-curated catalog entry (souvenirs, tour packages)
// shown on the public site.
type Item struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:150;not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"not null;default:0"`

	Images []ItemImage `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ItemImage struct {
	ID         uint   `gorm:"primaryKey"`
	ItemID     uint   `gorm:"not null;index"`
	ImagePath  string `gorm:"size:255;not null"`
	OrderIndex int    `gorm:"not null;default:0"`
	AltText    string `gorm:"size:150"`
	CreatedAt  time.Time
}
