package models

import "time"

// ReviewEntityType tags the target of a review. The pair (EntityType,
// EntityID) is a soft polymorphic reference, resolved through the
// allowlist in the review package rather than a foreign key.
type ReviewEntityType string

const (
	ReviewTargetLocation ReviewEntityType = "location"
	ReviewTargetHotel    ReviewEntityType = "hotel"
	ReviewTargetGuide    ReviewEntityType = "guide"
	ReviewTargetShop     ReviewEntityType = "shop"
	ReviewTargetVehicle  ReviewEntityType = "vehicle"
)

const MaxReviewImages = 5

type Review struct {
	ID         uint             `gorm:"primaryKey"`
	UserID     uint             `gorm:"not null;index"`
	User       User             `gorm:"foreignKey:UserID"`
	EntityType ReviewEntityType `gorm:"size:20;not null;index:idx_review_target,priority:1"`
	EntityID   uint             `gorm:"not null;index:idx_review_target,priority:2"`
	Rating     int              `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment    string           `gorm:"type:text"`

	Images []ReviewImage `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ReviewImage struct {
	ID         uint   `gorm:"primaryKey"`
	ReviewID   uint   `gorm:"not null;index"`
	ImagePath  string `gorm:"size:255;not null"`
	OrderIndex int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
}
