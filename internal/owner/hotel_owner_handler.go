package owner

import (
	"strings"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type HotelOwnerResponse struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"user_id"`
	Name          string `json:"name"`
	NIC           string `json:"nic"`
	BusinessMail  string `json:"business_mail"`
	ContactNumber string `json:"contact_number"`
}

type CreateHotelOwnerRequest struct {
	UserID        uint   `json:"user_id" validate:"required"`
	Name          string `json:"name" validate:"required,max=150"`
	NIC           string `json:"nic" validate:"required,max=20"`
	BusinessMail  string `json:"business_mail" validate:"omitempty,email"`
	ContactNumber string `json:"contact_number"`
}

type UpdateHotelOwnerRequest struct {
	Name          *string `json:"name"`
	BusinessMail  *string `json:"business_mail"`
	ContactNumber *string `json:"contact_number"`
}

func hotelOwnerResponse(o *models.HotelOwner) HotelOwnerResponse {
	return HotelOwnerResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Name:          o.Name,
		NIC:           o.NIC,
		BusinessMail:  o.BusinessMail,
		ContactNumber: o.ContactNumber,
	}
}

// GET /api/hotel-owners
func ListHotelOwnersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var owners []models.HotelOwner
		if err := database.DB.Order("name asc").Find(&owners).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list hotel owners")
		}
		res := make([]HotelOwnerResponse, 0, len(owners))
		for i := range owners {
			res = append(res, hotelOwnerResponse(&owners[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/hotel-owners/:id
func GetHotelOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var o models.HotelOwner
		if err := database.DB.First(&o, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hotel owner not found")
		}
		return c.JSON(hotelOwnerResponse(&o))
	}
}

// POST /api/admin/hotel-owners — normally provisioned through role
// approval, this exists for direct admin onboarding.
func CreateHotelOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateHotelOwnerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.NIC = strings.TrimSpace(body.NIC)
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		var count int64
		database.DB.Model(&models.HotelOwner{}).Where("nic = ? OR user_id = ?", body.NIC, body.UserID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "A hotel owner with this NIC or user already exists")
		}

		o := models.HotelOwner{
			UserID:        body.UserID,
			Name:          body.Name,
			NIC:           body.NIC,
			BusinessMail:  body.BusinessMail,
			ContactNumber: body.ContactNumber,
		}
		if err := database.DB.Create(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create hotel owner")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":     "Hotel owner created",
			"hotel_owner": hotelOwnerResponse(&o),
		})
	}
}

// PUT /api/hotel-owners/:id — profile owner or admin.
func UpdateHotelOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var o models.HotelOwner
		if err := database.DB.First(&o, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hotel owner not found")
		}
		if o.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this profile")
		}

		var body UpdateHotelOwnerRequest
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
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update hotel owner")
		}

		return c.JSON(fiber.Map{
			"message":     "Hotel owner updated",
			"hotel_owner": hotelOwnerResponse(&o),
		})
	}
}

// DELETE /api/admin/hotel-owners/:id
func DeleteHotelOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var o models.HotelOwner
		if err := database.DB.First(&o, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hotel owner not found")
		}
		if err := database.DB.Delete(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete hotel owner")
		}
		return c.JSON(fiber.Map{"message": "Hotel owner deleted"})
	}
}
