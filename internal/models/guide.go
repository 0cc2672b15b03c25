package models

import (
	"time"

	"gorm.io/datatypes"
)

// Guide is the role profile provisioned when a guide role request is
// accepted. One per user.
type Guide struct {
	ID             uint           `gorm:"primaryKey"`
	UserID         uint           `gorm:"not null;uniqueIndex"`
	User           User           `gorm:"foreignKey:UserID"`
	Name           string         `gorm:"size:150;not null"`
	NIC            string         `gorm:"size:20;uniqueIndex;not null"`
	BusinessMail   string         `gorm:"size:100"`
	ContactNumbers datatypes.JSON `gorm:"type:json"`
	Languages      datatypes.JSON `gorm:"type:json"`
	Locations      datatypes.JSON `gorm:"type:json"`
	Description    string         `gorm:"type:text"`

	Images []GuideImage `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type GuideImage struct {
	ID         uint   `gorm:"primaryKey"`
	GuideID    uint   `gorm:"not null;index"`
	ImagePath  string `gorm:"size:255;not null"`
	OrderIndex int    `gorm:"not null;default:0"`
	AltText    string `gorm:"size:150"`
	CreatedAt  time.Time
}
