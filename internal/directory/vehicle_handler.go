package directory

import (
	"strings"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/storage"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type VehicleResponse struct {
	ID             uint            `json:"id"`
	VehicleOwnerID uint            `json:"vehicle_owner_id"`
	UserID         uint            `json:"user_id"`
	Type           string          `json:"type"`
	Model          string          `json:"model"`
	Capacity       int             `json:"capacity"`
	PricePerDay    float64         `json:"price_per_day"`
	Locations      []string        `json:"locations"`
	Description    string          `json:"description"`
	Images         []ImageResponse `json:"images"`
}

type CreateVehicleRequest struct {
	Type           string  `json:"type" form:"type" validate:"required,max=50"`
	Model          string  `json:"model" form:"model"`
	Capacity       int     `json:"capacity" form:"capacity" validate:"required,min=1"`
	PricePerDay    float64 `json:"price_per_day" form:"price_per_day"`
	Locations      string  `json:"locations" form:"locations"`
	Description    string  `json:"description" form:"description"`
	VehicleOwnerID *uint   `json:"vehicle_owner_id" form:"vehicle_owner_id"` // admin only
}

type UpdateVehicleRequest struct {
	Type        *string  `json:"type" form:"type"`
	Model       *string  `json:"model" form:"model"`
	Capacity    *int     `json:"capacity" form:"capacity"`
	PricePerDay *float64 `json:"price_per_day" form:"price_per_day"`
	Locations   *string  `json:"locations" form:"locations"`
	Description *string  `json:"description" form:"description"`
}

func vehicleResponse(store storage.Storage, v *models.Vehicle) VehicleResponse {
	res := VehicleResponse{
		ID:             v.ID,
		VehicleOwnerID: v.VehicleOwnerID,
		UserID:         v.UserID,
		Type:           v.Type,
		Model:          v.Model,
		Capacity:       v.Capacity,
		PricePerDay:    v.PricePerDay,
		Locations:      jsonStrings(v.Locations),
		Description:    v.Description,
		Images:         make([]ImageResponse, 0, len(v.Images)),
	}
	for _, img := range v.Images {
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

// GET /api/vehicles?location=Ella&type=van
func ListVehiclesHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Images", orderedImages).Model(&models.Vehicle{})
		if loc := strings.TrimSpace(c.Query("location")); loc != "" {
			dbq = dbq.Where("LOWER(locations) LIKE ?", "%"+strings.ToLower(loc)+"%")
		}
		if t := c.Query("type"); t != "" {
			dbq = dbq.Where("type = ?", t)
		}

		var vehicles []models.Vehicle
		if err := dbq.Order("id asc").Find(&vehicles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list vehicles")
		}

		res := make([]VehicleResponse, 0, len(vehicles))
		for i := range vehicles {
			res = append(res, vehicleResponse(store, &vehicles[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/vehicles/:id
func GetVehicleHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var v models.Vehicle
		if err := database.DB.Preload("Images", orderedImages).First(&v, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle not found")
		}
		return c.JSON(vehicleResponse(store, &v))
	}
}

// POST /api/vehicles
func CreateVehicleHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateVehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		var owner models.VehicleOwner
		if body.VehicleOwnerID != nil && auth.IsAdmin(c) {
			if err := database.DB.First(&owner, *body.VehicleOwnerID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Vehicle owner not found")
			}
		} else {
			if err := database.DB.Where("user_id = ?", callerID).First(&owner).Error; err != nil {
				return fiber.NewError(fiber.StatusForbidden, "No vehicle owner profile for this account")
			}
		}

		locations, ok := parseJSONList(body.Locations)
		if !ok {
			return validation.Respond(c, map[string]string{"locations": "must be a JSON array of strings"})
		}

		v := models.Vehicle{
			VehicleOwnerID: owner.ID,
			UserID:         owner.UserID,
			Type:           body.Type,
			Model:          body.Model,
			Capacity:       body.Capacity,
			PricePerDay:    body.PricePerDay,
			Locations:      locations,
			Description:    body.Description,
		}
		tx := database.DB.Begin()
		if err := tx.Create(&v).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create vehicle")
		}

		files := formImageFiles(c, "images", "images[]")
		stored, err := storeUploads(store, vehicleFolder(v.ID), files, 0)
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.VehicleImage{
				VehicleID:  v.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create vehicle")
		}

		database.DB.Preload("Images", orderedImages).First(&v, v.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Vehicle created",
			"vehicle": vehicleResponse(store, &v),
		})
	}
}

// PUT /api/vehicles/:id
func UpdateVehicleHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var v models.Vehicle
		if err := database.DB.Preload("Images", orderedImages).First(&v, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle not found")
		}
		if v.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this vehicle")
		}

		var body UpdateVehicleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Type != nil {
			t := strings.TrimSpace(*body.Type)
			if t == "" {
				return validation.Respond(c, map[string]string{"type": "this field is required"})
			}
			v.Type = t
		}
		if body.Model != nil {
			v.Model = *body.Model
		}
		if body.Capacity != nil {
			if *body.Capacity < 1 {
				return validation.Respond(c, map[string]string{"capacity": "must be at least 1"})
			}
			v.Capacity = *body.Capacity
		}
		if body.PricePerDay != nil {
			v.PricePerDay = *body.PricePerDay
		}
		if body.Description != nil {
			v.Description = *body.Description
		}
		if body.Locations != nil {
			locations, ok := parseJSONList(*body.Locations)
			if !ok {
				return validation.Respond(c, map[string]string{"locations": "must be a JSON array of strings"})
			}
			v.Locations = locations
		}

		removeList := formValues(c, "remove_images", "remove_images[]")
		files := formImageFiles(c, "images", "images[]")

		tx := database.DB.Begin()
		if err := tx.Save(&v).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update vehicle")
		}

		surviving := make([]uint, 0, len(v.Images))
		for _, img := range v.Images {
			if contains(removeList, img.ImagePath) {
				if err := tx.Delete(&models.VehicleImage{}, img.ID).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Could not remove images")
				}
				_ = store.Delete(img.ImagePath)
				continue
			}
			surviving = append(surviving, img.ID)
		}
		if err := reindexImages[models.VehicleImage](tx, surviving); err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reorder images")
		}

		stored, err := storeUploads(store, vehicleFolder(v.ID), files, len(surviving))
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.VehicleImage{
				VehicleID:  v.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update vehicle")
		}

		database.DB.Preload("Images", orderedImages).First(&v, v.ID)
		return c.JSON(fiber.Map{
			"message": "Vehicle updated",
			"vehicle": vehicleResponse(store, &v),
		})
	}
}

// DELETE /api/vehicles/:id
func DeleteVehicleHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var v models.Vehicle
		if err := database.DB.First(&v, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle not found")
		}
		if v.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this vehicle")
		}

		if err := database.DB.Where("vehicle_id = ?", v.ID).Delete(&models.VehicleImage{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete vehicle images")
		}
		if err := database.DB.Delete(&v).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete vehicle")
		}
		_ = store.DeleteFolder(vehicleFolder(v.ID))

		return c.JSON(fiber.Map{"message": "Vehicle deleted"})
	}
}
