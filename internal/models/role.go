package models

import "time"

type RoleName string

const (
	RoleGuide        RoleName = "guide"
	RoleShopOwner    RoleName = "shop_owner"
	RoleHotelOwner   RoleName = "hotel_owner"
	RoleVehicleOwner RoleName = "vehicle_owner"
)

// AllRoleNames drives role seeding at migration time.
var AllRoleNames = []RoleName{RoleGuide, RoleShopOwner, RoleHotelOwner, RoleVehicleOwner}

type Role struct {
	ID        uint     `gorm:"primaryKey"`
	Name      RoleName `gorm:"size:30;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User `gorm:"many2many:user_roles"`
}
