package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role profiles for the owner roles. HotelOwner and ShopOwner rows are
// provisioned on role-request approval; VehicleOwner rows are created by
// the owner through the self-service endpoint (approval only grants the
// role).

type HotelOwner struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"not null;uniqueIndex"`
	User          User   `gorm:"foreignKey:UserID"`
	Name          string `gorm:"size:150;not null"`
	NIC           string `gorm:"size:20;uniqueIndex;not null"`
	BusinessMail  string `gorm:"size:100"`
	ContactNumber string `gorm:"size:20"`

	Hotels []Hotel `gorm:"foreignKey:HotelOwnerID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ShopOwner struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"not null;uniqueIndex"`
	User          User   `gorm:"foreignKey:UserID"`
	Name          string `gorm:"size:150;not null"`
	NIC           string `gorm:"size:20;uniqueIndex;not null"`
	BusinessMail  string `gorm:"size:100"`
	ContactNumber string `gorm:"size:20"`

	Shops []Shop `gorm:"foreignKey:ShopOwnerID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type VehicleOwner struct {
	ID             uint           `gorm:"primaryKey"`
	UserID         uint           `gorm:"not null;uniqueIndex"`
	User           User           `gorm:"foreignKey:UserID"`
	Name           string         `gorm:"size:150;not null"`
	NIC            string         `gorm:"size:20;uniqueIndex;not null"`
	BusinessMail   string         `gorm:"size:100"`
	ContactNumbers datatypes.JSON `gorm:"type:json"`
	Locations      datatypes.JSON `gorm:"type:json"`
	Description    string         `gorm:"type:text"`

	Vehicles []Vehicle `gorm:"foreignKey:VehicleOwnerID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
