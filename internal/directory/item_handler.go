package directory

import (
	"strings"

	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/storage"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type ItemResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Images      []ImageResponse `json:"images"`
}

type CreateItemRequest struct {
	Name        string  `json:"name" form:"name" validate:"required,max=150"`
	Description string  `json:"description" form:"description"`
	Price       float64 `json:"price" form:"price" validate:"min=0"`
}

type UpdateItemRequest struct {
	Name        *string  `json:"name" form:"name"`
	Description *string  `json:"description" form:"description"`
	Price       *float64 `json:"price" form:"price"`
}

func itemResponse(store storage.Storage, it *models.Item) ItemResponse {
	res := ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		Images:      make([]ImageResponse, 0, len(it.Images)),
	}
	for _, img := range it.Images {
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

// GET /api/items
func ListItemsHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.Item
		if err := database.DB.Preload("Images", orderedImages).Order("name asc").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list items")
		}

		res := make([]ItemResponse, 0, len(items))
		for i := range items {
			res = append(res, itemResponse(store, &items[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/items/:id
func GetItemHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var it models.Item
		if err := database.DB.Preload("Images", orderedImages).First(&it, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}
		return c.JSON(itemResponse(store, &it))
	}
}

// POST /api/admin/items
func CreateItemHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		it := models.Item{Name: body.Name, Description: body.Description, Price: body.Price}
		tx := database.DB.Begin()
		if err := tx.Create(&it).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create item")
		}

		files := formImageFiles(c, "images", "images[]")
		stored, err := storeUploads(store, itemFolder(it.ID), files, 0)
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.ItemImage{
				ItemID:     it.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create item")
		}

		database.DB.Preload("Images", orderedImages).First(&it, it.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Item created",
			"item":    itemResponse(store, &it),
		})
	}
}

// PUT /api/admin/items/:id
func UpdateItemHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var it models.Item
		if err := database.DB.Preload("Images", orderedImages).First(&it, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return validation.Respond(c, map[string]string{"name": "this field is required"})
			}
			it.Name = name
		}
		if body.Description != nil {
			it.Description = *body.Description
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return validation.Respond(c, map[string]string{"price": "must be at least 0"})
			}
			it.Price = *body.Price
		}

		removeList := formValues(c, "remove_images", "remove_images[]")
		files := formImageFiles(c, "images", "images[]")

		tx := database.DB.Begin()
		if err := tx.Save(&it).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update item")
		}

		surviving := make([]uint, 0, len(it.Images))
		for _, img := range it.Images {
			if contains(removeList, img.ImagePath) {
				if err := tx.Delete(&models.ItemImage{}, img.ID).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Could not remove images")
				}
				_ = store.Delete(img.ImagePath)
				continue
			}
			surviving = append(surviving, img.ID)
		}
		if err := reindexImages[models.ItemImage](tx, surviving); err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reorder images")
		}

		stored, err := storeUploads(store, itemFolder(it.ID), files, len(surviving))
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.ItemImage{
				ItemID:     it.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update item")
		}

		database.DB.Preload("Images", orderedImages).First(&it, it.ID)
		return c.JSON(fiber.Map{
			"message": "Item updated",
			"item":    itemResponse(store, &it),
		})
	}
}

// DELETE /api/admin/items/:id
func DeleteItemHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var it models.Item
		if err := database.DB.First(&it, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}

		if err := database.DB.Where("item_id = ?", it.ID).Delete(&models.ItemImage{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete item images")
		}
		if err := database.DB.Delete(&it).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete item")
		}
		_ = store.DeleteFolder(itemFolder(it.ID))

		return c.JSON(fiber.Map{"message": "Item deleted"})
	}
}
