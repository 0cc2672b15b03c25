package directory

import (
	"strings"

	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/storage"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type LocationResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	District    string          `json:"district"`
	Province    string          `json:"province"`
	Category    string          `json:"category"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	Images      []ImageResponse `json:"images"`
}

type ImageResponse struct {
	ID         uint   `json:"id"`
	Path       string `json:"path"`
	URL        string `json:"url"`
	OrderIndex int    `json:"order_index"`
	AltText    string `json:"alt_text,omitempty"`
}

type CreateLocationRequest struct {
	Name        string   `json:"name" form:"name" validate:"required,max=150"`
	Description string   `json:"description" form:"description"`
	District    string   `json:"district" form:"district"`
	Province    string   `json:"province" form:"province"`
	Category    string   `json:"category" form:"category"`
	Latitude    *float64 `json:"latitude" form:"latitude" validate:"required"`
	Longitude   *float64 `json:"longitude" form:"longitude" validate:"required"`
}

type UpdateLocationRequest struct {
	Name        *string  `json:"name" form:"name"`
	Description *string  `json:"description" form:"description"`
	District    *string  `json:"district" form:"district"`
	Province    *string  `json:"province" form:"province"`
	Category    *string  `json:"category" form:"category"`
	Latitude    *float64 `json:"latitude" form:"latitude"`
	Longitude   *float64 `json:"longitude" form:"longitude"`
}

func locationResponse(store storage.Storage, l *models.Location) LocationResponse {
	res := LocationResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		District:    l.District,
		Province:    l.Province,
		Category:    l.Category,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Images:      make([]ImageResponse, 0, len(l.Images)),
	}
	for _, img := range l.Images {
		res.Images = append(res.Images, ImageResponse{
			ID:         img.ID,
			Path:       img.ImagePath,
			URL:        store.URL(img.ImagePath),
			OrderIndex: img.OrderIndex,
			AltText:    img.AltText,
		})
	}
	return res
}

// GET /api/locations?district=...&category=...&q=...
func ListLocationsHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Images", orderedImages).Model(&models.Location{})

		if district := c.Query("district"); district != "" {
			dbq = dbq.Where("district = ?", district)
		}
		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(district) LIKE ?", like, like, like)
		}

		var locations []models.Location
		if err := dbq.Order("name asc").Find(&locations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list locations")
		}

		res := make([]LocationResponse, 0, len(locations))
		for i := range locations {
			res = append(res, locationResponse(store, &locations[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/locations/:id
func GetLocationHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var l models.Location
		if err := database.DB.Preload("Images", orderedImages).First(&l, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}
		return c.JSON(locationResponse(store, &l))
	}
}

// POST /api/admin/locations (multipart, images under "images")
func CreateLocationHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		l := models.Location{
			Name:        body.Name,
			Description: body.Description,
			District:    body.District,
			Province:    body.Province,
			Category:    body.Category,
			Latitude:    *body.Latitude,
			Longitude:   *body.Longitude,
		}
		tx := database.DB.Begin()
		if err := tx.Create(&l).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create location")
		}

		files := formImageFiles(c, "images", "images[]")
		stored, err := storeUploads(store, locationFolder(l.ID), files, 0)
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.LocationImage{
				LocationID: l.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create location")
		}

		database.DB.Preload("Images", orderedImages).First(&l, l.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Location created",
			"location": locationResponse(store, &l),
		})
	}
}

// PUT /api/admin/locations/:id — supplied fields only; a new image set
// replaces the old one wholesale.
func UpdateLocationHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var l models.Location
		if err := database.DB.Preload("Images", orderedImages).First(&l, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}

		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return validation.Respond(c, map[string]string{"name": "this field is required"})
			}
			l.Name = name
		}
		if body.Description != nil {
			l.Description = *body.Description
		}
		if body.District != nil {
			l.District = *body.District
		}
		if body.Province != nil {
			l.Province = *body.Province
		}
		if body.Category != nil {
			l.Category = *body.Category
		}
		if body.Latitude != nil {
			l.Latitude = *body.Latitude
		}
		if body.Longitude != nil {
			l.Longitude = *body.Longitude
		}

		tx := database.DB.Begin()
		if err := tx.Save(&l).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update location")
		}

		files := formImageFiles(c, "images", "images[]")
		if len(files) > 0 {
			if err := tx.Where("location_id = ?", l.ID).Delete(&models.LocationImage{}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not remove images")
			}
			for _, img := range l.Images {
				_ = store.Delete(img.ImagePath)
			}

			stored, err := storeUploads(store, locationFolder(l.ID), files, 0)
			if err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
			for _, img := range stored {
				if err := tx.Create(&models.LocationImage{
					LocationID: l.ID,
					ImagePath:  img.Path,
					OrderIndex: img.OrderIndex,
				}).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
				}
			}
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update location")
		}

		database.DB.Preload("Images", orderedImages).First(&l, l.ID)
		return c.JSON(fiber.Map{
			"message":  "Location updated",
			"location": locationResponse(store, &l),
		})
	}
}

// DELETE /api/admin/locations/:id
func DeleteLocationHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var l models.Location
		if err := database.DB.First(&l, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Location not found")
		}

		if err := database.DB.Where("location_id = ?", l.ID).Delete(&models.LocationImage{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete location images")
		}
		if err := database.DB.Delete(&l).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete location")
		}
		_ = store.DeleteFolder(locationFolder(l.ID))

		return c.JSON(fiber.Map{"message": "Location deleted"})
	}
}
