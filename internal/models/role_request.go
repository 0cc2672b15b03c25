package models

import (
	"time"

	"gorm.io/datatypes"
)

type RoleRequestStatus string

const (
	RequestPending  RoleRequestStatus = "pending"
	RequestAccepted RoleRequestStatus = "accepted"
	RequestRejected RoleRequestStatus = "rejected"
)

// RoleRequest is a user's application for a business role, adjudicated
// by an admin. ExtraData carries the role-specific payload; its shape is
// validated against the schema registered for the target role.
type RoleRequest struct {
	ID        uint              `gorm:"primaryKey"`
	UserID    uint              `gorm:"not null;index"`
	User      User              `gorm:"foreignKey:UserID"`
	RoleID    uint              `gorm:"not null;index"`
	Role      Role              `gorm:"foreignKey:RoleID"`
	Status    RoleRequestStatus `gorm:"size:20;not null;default:pending;index"`
	ExtraData datatypes.JSON    `gorm:"type:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
