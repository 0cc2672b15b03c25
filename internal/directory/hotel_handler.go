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

type HotelResponse struct {
	ID            uint            `json:"id"`
	HotelOwnerID  uint            `json:"hotel_owner_id"`
	UserID        uint            `json:"user_id"`
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Description   string          `json:"description"`
	ContactNumber string          `json:"contact_number"`
	Locations     []string        `json:"locations"`
	Images        []ImageResponse `json:"images"`
}

type CreateHotelRequest struct {
	Name          string `json:"name" form:"name" validate:"required,max=150"`
	Address       string `json:"address" form:"address" validate:"required"`
	Description   string `json:"description" form:"description"`
	ContactNumber string `json:"contact_number" form:"contact_number"`
	Locations     string `json:"locations" form:"locations"`
	HotelOwnerID  *uint  `json:"hotel_owner_id" form:"hotel_owner_id"` // admin only
}

type UpdateHotelRequest struct {
	Name          *string `json:"name" form:"name"`
	Address       *string `json:"address" form:"address"`
	Description   *string `json:"description" form:"description"`
	ContactNumber *string `json:"contact_number" form:"contact_number"`
	Locations     *string `json:"locations" form:"locations"`
}

func hotelResponse(store storage.Storage, h *models.Hotel) HotelResponse {
	res := HotelResponse{
		ID:            h.ID,
		HotelOwnerID:  h.HotelOwnerID,
		UserID:        h.UserID,
		Name:          h.Name,
		Address:       h.Address,
		Description:   h.Description,
		ContactNumber: h.ContactNumber,
		Locations:     jsonStrings(h.Locations),
		Images:        make([]ImageResponse, 0, len(h.Images)),
	}
	for _, img := range h.Images {
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

// GET /api/hotels?location=Galle
func ListHotelsHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Images", orderedImages).Model(&models.Hotel{})
		if loc := strings.TrimSpace(c.Query("location")); loc != "" {
			dbq = dbq.Where("LOWER(locations) LIKE ?", "%"+strings.ToLower(loc)+"%")
		}

		var hotels []models.Hotel
		if err := dbq.Order("name asc").Find(&hotels).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list hotels")
		}

		res := make([]HotelResponse, 0, len(hotels))
		for i := range hotels {
			res = append(res, hotelResponse(store, &hotels[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/hotels/:id
func GetHotelHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var h models.Hotel
		if err := database.DB.Preload("Images", orderedImages).First(&h, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hotel not found")
		}
		return c.JSON(hotelResponse(store, &h))
	}
}

// POST /api/hotels — caller must have a hotel-owner profile; admins may
// target another owner via hotel_owner_id.
func CreateHotelHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateHotelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		var owner models.HotelOwner
		if body.HotelOwnerID != nil && auth.IsAdmin(c) {
			if err := database.DB.First(&owner, *body.HotelOwnerID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Hotel owner not found")
			}
		} else {
			if err := database.DB.Where("user_id = ?", callerID).First(&owner).Error; err != nil {
				return fiber.NewError(fiber.StatusForbidden, "No hotel owner profile for this account")
			}
		}

		locations, ok := parseJSONList(body.Locations)
		if !ok {
			return validation.Respond(c, map[string]string{"locations": "must be a JSON array of strings"})
		}

		h := models.Hotel{
			HotelOwnerID:  owner.ID,
			UserID:        owner.UserID,
			Name:          body.Name,
			Address:       body.Address,
			Description:   body.Description,
			ContactNumber: body.ContactNumber,
			Locations:     locations,
		}
		tx := database.DB.Begin()
		if err := tx.Create(&h).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create hotel")
		}

		files := formImageFiles(c, "images", "images[]")
		stored, err := storeUploads(store, hotelFolder(h.ID), files, 0)
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.HotelImage{
				HotelID:    h.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create hotel")
		}

		database.DB.Preload("Images", orderedImages).First(&h, h.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Hotel created",
			"hotel":   hotelResponse(store, &h),
		})
	}
}

// PUT /api/hotels/:id — owner or admin; images append, remove_images
// deletes by path and survivors are renumbered.
func UpdateHotelHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var h models.Hotel
		if err := database.DB.Preload("Images", orderedImages).First(&h, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hotel not found")
		}
		if h.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this hotel")
		}

		var body UpdateHotelRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return validation.Respond(c, map[string]string{"name": "this field is required"})
			}
			h.Name = name
		}
		if body.Address != nil {
			h.Address = *body.Address
		}
		if body.Description != nil {
			h.Description = *body.Description
		}
		if body.ContactNumber != nil {
			h.ContactNumber = *body.ContactNumber
		}
		if body.Locations != nil {
			locations, ok := parseJSONList(*body.Locations)
			if !ok {
				return validation.Respond(c, map[string]string{"locations": "must be a JSON array of strings"})
			}
			h.Locations = locations
		}

		removeList := formValues(c, "remove_images", "remove_images[]")
		files := formImageFiles(c, "images", "images[]")

		tx := database.DB.Begin()
		if err := tx.Save(&h).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update hotel")
		}

		surviving := make([]uint, 0, len(h.Images))
		for _, img := range h.Images {
			if contains(removeList, img.ImagePath) {
				if err := tx.Delete(&models.HotelImage{}, img.ID).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Could not remove images")
				}
				_ = store.Delete(img.ImagePath)
				continue
			}
			surviving = append(surviving, img.ID)
		}
		if err := reindexImages[models.HotelImage](tx, surviving); err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reorder images")
		}

		stored, err := storeUploads(store, hotelFolder(h.ID), files, len(surviving))
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.HotelImage{
				HotelID:    h.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update hotel")
		}

		database.DB.Preload("Images", orderedImages).First(&h, h.ID)
		return c.JSON(fiber.Map{
			"message": "Hotel updated",
			"hotel":   hotelResponse(store, &h),
		})
	}
}

// DELETE /api/hotels/:id — owner or admin.
func DeleteHotelHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var h models.Hotel
		if err := database.DB.First(&h, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hotel not found")
		}
		if h.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this hotel")
		}

		if err := database.DB.Where("hotel_id = ?", h.ID).Delete(&models.HotelImage{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete hotel images")
		}
		if err := database.DB.Delete(&h).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete hotel")
		}
		_ = store.DeleteFolder(hotelFolder(h.ID))

		return c.JSON(fiber.Map{"message": "Hotel deleted"})
	}
}
