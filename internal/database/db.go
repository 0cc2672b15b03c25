package database

import (
	"log"

	"lankatrails-backend/internal/config"
	"lankatrails-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Println("database ready, migration complete")
}

// Migrate runs AutoMigrate and seeds the business roles. Split out of
// Init so tests can run it against their own database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.RoleRequest{},
		&models.Location{},
		&models.LocationImage{},
		&models.Guide{},
		&models.GuideImage{},
		&models.HotelOwner{},
		&models.Hotel{},
		&models.HotelImage{},
		&models.ShopOwner{},
		&models.Shop{},
		&models.ShopImage{},
		&models.VehicleOwner{},
		&models.Vehicle{},
		&models.VehicleImage{},
		&models.Item{},
		&models.ItemImage{},
		&models.Review{},
		&models.ReviewImage{},
		&models.WebsiteReview{},
		&models.OtherReview{},
		&models.LocationHotelReview{},
	)
	if err != nil {
		return err
	}

	return seedRoles(db)
}

func seedRoles(db *gorm.DB) error {
	for _, name := range models.AllRoleNames {
		var count int64
		if err := db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&models.Role{Name: name}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
