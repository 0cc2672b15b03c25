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

type ShopResponse struct {
	ID            uint            `json:"id"`
	ShopOwnerID   uint            `json:"shop_owner_id"`
	UserID        uint            `json:"user_id"`
	Name          string          `json:"name"`
	Address       string          `json:"address"`
	Description   string          `json:"description"`
	ContactNumber string          `json:"contact_number"`
	Locations     []string        `json:"locations"`
	Images        []ImageResponse `json:"images"`
}

type CreateShopRequest struct {
	Name          string `json:"name" form:"name" validate:"required,max=150"`
	Address       string `json:"address" form:"address" validate:"required"`
	Description   string `json:"description" form:"description"`
	ContactNumber string `json:"contact_number" form:"contact_number"`
	Locations     string `json:"locations" form:"locations"`
	ShopOwnerID   *uint  `json:"shop_owner_id" form:"shop_owner_id"` // admin only
}

type UpdateShopRequest struct {
	Name          *string `json:"name" form:"name"`
	Address       *string `json:"address" form:"address"`
	Description   *string `json:"description" form:"description"`
	ContactNumber *string `json:"contact_number" form:"contact_number"`
	Locations     *string `json:"locations" form:"locations"`
}

func shopResponse(store storage.Storage, s *models.Shop) ShopResponse {
	res := ShopResponse{
		ID:            s.ID,
		ShopOwnerID:   s.ShopOwnerID,
		UserID:        s.UserID,
		Name:          s.Name,
		Address:       s.Address,
		Description:   s.Description,
		ContactNumber: s.ContactNumber,
		Locations:     jsonStrings(s.Locations),
		Images:        make([]ImageResponse, 0, len(s.Images)),
	}
	for _, img := range s.Images {
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

// GET /api/shops?location=Colombo
func ListShopsHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Images", orderedImages).Model(&models.Shop{})
		if loc := strings.TrimSpace(c.Query("location")); loc != "" {
			dbq = dbq.Where("LOWER(locations) LIKE ?", "%"+strings.ToLower(loc)+"%")
		}

		var shops []models.Shop
		if err := dbq.Order("name asc").Find(&shops).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list shops")
		}

		res := make([]ShopResponse, 0, len(shops))
		for i := range shops {
			res = append(res, shopResponse(store, &shops[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/shops/:id
func GetShopHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var s models.Shop
		if err := database.DB.Preload("Images", orderedImages).First(&s, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Shop not found")
		}
		return c.JSON(shopResponse(store, &s))
	}
}

// POST /api/shops
func CreateShopHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateShopRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		var owner models.ShopOwner
		if body.ShopOwnerID != nil && auth.IsAdmin(c) {
			if err := database.DB.First(&owner, *body.ShopOwnerID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Shop owner not found")
			}
		} else {
			if err := database.DB.Where("user_id = ?", callerID).First(&owner).Error; err != nil {
				return fiber.NewError(fiber.StatusForbidden, "No shop owner profile for this account")
			}
		}

		locations, ok := parseJSONList(body.Locations)
		if !ok {
			return validation.Respond(c, map[string]string{"locations": "must be a JSON array of strings"})
		}

		s := models.Shop{
			ShopOwnerID:   owner.ID,
			UserID:        owner.UserID,
			Name:          body.Name,
			Address:       body.Address,
			Description:   body.Description,
			ContactNumber: body.ContactNumber,
			Locations:     locations,
		}
		tx := database.DB.Begin()
		if err := tx.Create(&s).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create shop")
		}

		files := formImageFiles(c, "images", "images[]")
		stored, err := storeUploads(store, shopFolder(s.ID), files, 0)
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.ShopImage{
				ShopID:     s.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create shop")
		}

		database.DB.Preload("Images", orderedImages).First(&s, s.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Shop created",
			"shop":    shopResponse(store, &s),
		})
	}
}

// PUT /api/shops/:id
func UpdateShopHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var s models.Shop
		if err := database.DB.Preload("Images", orderedImages).First(&s, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Shop not found")
		}
		if s.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this shop")
		}

		var body UpdateShopRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return validation.Respond(c, map[string]string{"name": "this field is required"})
			}
			s.Name = name
		}
		if body.Address != nil {
			s.Address = *body.Address
		}
		if body.Description != nil {
			s.Description = *body.Description
		}
		if body.ContactNumber != nil {
			s.ContactNumber = *body.ContactNumber
		}
		if body.Locations != nil {
			locations, ok := parseJSONList(*body.Locations)
			if !ok {
				return validation.Respond(c, map[string]string{"locations": "must be a JSON array of strings"})
			}
			s.Locations = locations
		}

		removeList := formValues(c, "remove_images", "remove_images[]")
		files := formImageFiles(c, "images", "images[]")

		tx := database.DB.Begin()
		if err := tx.Save(&s).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update shop")
		}

		surviving := make([]uint, 0, len(s.Images))
		for _, img := range s.Images {
			if contains(removeList, img.ImagePath) {
				if err := tx.Delete(&models.ShopImage{}, img.ID).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Could not remove images")
				}
				_ = store.Delete(img.ImagePath)
				continue
			}
			surviving = append(surviving, img.ID)
		}
		if err := reindexImages[models.ShopImage](tx, surviving); err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reorder images")
		}

		stored, err := storeUploads(store, shopFolder(s.ID), files, len(surviving))
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.ShopImage{
				ShopID:     s.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update shop")
		}

		database.DB.Preload("Images", orderedImages).First(&s, s.ID)
		return c.JSON(fiber.Map{
			"message": "Shop updated",
			"shop":    shopResponse(store, &s),
		})
	}
}

// DELETE /api/shops/:id
func DeleteShopHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var s models.Shop
		if err := database.DB.First(&s, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Shop not found")
		}
		if s.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this shop")
		}

		if err := database.DB.Where("shop_id = ?", s.ID).Delete(&models.ShopImage{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete shop images")
		}
		if err := database.DB.Delete(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete shop")
		}
		_ = store.DeleteFolder(shopFolder(s.ID))

		return c.JSON(fiber.Map{"message": "Shop deleted"})
	}
}
