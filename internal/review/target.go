package review

import (
	"lankatrails-backend/internal/models"

	"gorm.io/gorm"
)

// The (entity_type, entity_id) pair on a review is a soft polymorphic
// reference. targets is the allowlist: a tag outside this map is
// rejected outright, and the exists check resolves the id against the
// right table at write time.
var targets = map[models.ReviewEntityType]func(db *gorm.DB, id uint) bool{
	models.ReviewTargetLocation: existsIn[models.Location],
	models.ReviewTargetHotel:    existsIn[models.Hotel],
	models.ReviewTargetGuide:    existsIn[models.Guide],
	models.ReviewTargetShop:     existsIn[models.Shop],
	models.ReviewTargetVehicle:  existsIn[models.Vehicle],
}

func existsIn[T any](db *gorm.DB, id uint) bool {
	var count int64
	db.Model(new(T)).Where("id = ?", id).Count(&count)
	return count > 0
}

// ResolveTarget validates the tag against the allowlist and the id
// against the target table.
func ResolveTarget(db *gorm.DB, tag string, id uint) (models.ReviewEntityType, bool, bool) {
	entityType := models.ReviewEntityType(tag)
	exists, allowed := targets[entityType]
	if !allowed {
		return "", false, false
	}
	return entityType, exists(db, id), true
}
