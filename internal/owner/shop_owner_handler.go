package owner

import (
	"strings"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type ShopOwnerResponse struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"user_id"`
	Name          string `json:"name"`
	NIC           string `json:"nic"`
	BusinessMail  string `json:"business_mail"`
	ContactNumber string `json:"contact_number"`
}

type CreateShopOwnerRequest struct {
	UserID        uint   `json:"user_id" validate:"required"`
	Name          string `json:"name" validate:"required,max=150"`
	NIC           string `json:"nic" validate:"required,max=20"`
	BusinessMail  string `json:"business_mail" validate:"omitempty,email"`
	ContactNumber string `json:"contact_number"`
}

type UpdateShopOwnerRequest struct {
	Name          *string `json:"name"`
	BusinessMail  *string `json:"business_mail"`
	ContactNumber *string `json:"contact_number"`
}

func shopOwnerResponse(o *models.ShopOwner) ShopOwnerResponse {
	return ShopOwnerResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Name:          o.Name,
		NIC:           o.NIC,
		BusinessMail:  o.BusinessMail,
		ContactNumber: o.ContactNumber,
	}
}

// GET /api/shop-owners
func ListShopOwnersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var owners []models.ShopOwner
		if err := database.DB.Order("name asc").Find(&owners).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list shop owners")
		}
		res := make([]ShopOwnerResponse, 0, len(owners))
		for i := range owners {
			res = append(res, shopOwnerResponse(&owners[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/shop-owners/:id
func GetShopOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var o models.ShopOwner
		if err := database.DB.First(&o, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Shop owner not found")
		}
		return c.JSON(shopOwnerResponse(&o))
	}
}

// POST /api/admin/shop-owners
func CreateShopOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateShopOwnerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.NIC = strings.TrimSpace(body.NIC)
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		var count int64
		database.DB.Model(&models.ShopOwner{}).Where("nic = ? OR user_id = ?", body.NIC, body.UserID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "A shop owner with this NIC or user already exists")
		}

		o := models.ShopOwner{
			UserID:        body.UserID,
			Name:          body.Name,
			NIC:           body.NIC,
			BusinessMail:  body.BusinessMail,
			ContactNumber: body.ContactNumber,
		}
		if err := database.DB.Create(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create shop owner")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    "Shop owner created",
			"shop_owner": shopOwnerResponse(&o),
		})
	}
}

// PUT /api/shop-owners/:id — profile owner or admin.
func UpdateShopOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var o models.ShopOwner
		if err := database.DB.First(&o, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Shop owner not found")
		}
		if o.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this profile")
		}

		var body UpdateShopOwnerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return validation.Respond(c, map[string]string{"name": "this field is required"})
			}
			o.Name = name
		}
		if body.BusinessMail != nil {
			o.BusinessMail = *body.BusinessMail
		}
		if body.ContactNumber != nil {
			o.ContactNumber = *body.ContactNumber
		}

		if err := database.DB.Save(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update shop owner")
		}

		return c.JSON(fiber.Map{
			"message":    "Shop owner updated",
			"shop_owner": shopOwnerResponse(&o),
		})
	}
}

// DELETE /api/admin/shop-owners/:id
func DeleteShopOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var o models.ShopOwner
		if err := database.DB.First(&o, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Shop owner not found")
		}
		if err := database.DB.Delete(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete shop owner")
		}
		return c.JSON(fiber.Map{"message": "Shop owner deleted"})
	}
}
