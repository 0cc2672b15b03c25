package owner

import (
	"encoding/json"
	"strings"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type VehicleOwnerResponse struct {
	ID             uint     `json:"id"`
	UserID         uint     `json:"user_id"`
	Name           string   `json:"name"`
	NIC            string   `json:"nic"`
	BusinessMail   string   `json:"business_mail"`
	ContactNumbers []string `json:"contact_numbers"`
	Locations      []string `json:"locations"`
	Description    string   `json:"description"`
}

type CreateVehicleOwnerRequest struct {
	Name           string   `json:"name" validate:"required,max=150"`
	NIC            string   `json:"nic" validate:"required,max=20"`
	BusinessMail   string   `json:"business_mail" validate:"omitempty,email"`
	ContactNumbers []string `json:"contact_numbers"`
	Locations      []string `json:"locations"`
	Description    string   `json:"description"`
	UserID         *uint    `json:"user_id"` // admin only
}

type UpdateVehicleOwnerRequest struct {
	Name           *string   `json:"name"`
	BusinessMail   *string   `json:"business_mail"`
	ContactNumbers *[]string `json:"contact_numbers"`
	Locations      *[]string `json:"locations"`
	Description    *string   `json:"description"`
}

func stringsJSON(data datatypes.JSON) []string {
	out := []string{}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &out)
	}
	return out
}

func toJSON(list []string) datatypes.JSON {
	if list == nil {
		return nil
	}
	data, _ := json.Marshal(list)
	return datatypes.JSON(data)
}

func vehicleOwnerResponse(o *models.VehicleOwner) VehicleOwnerResponse {
	return VehicleOwnerResponse{
		ID:             o.ID,
		UserID:         o.UserID,
		Name:           o.Name,
		NIC:            o.NIC,
		BusinessMail:   o.BusinessMail,
		ContactNumbers: stringsJSON(o.ContactNumbers),
		Locations:      stringsJSON(o.Locations),
		Description:    o.Description,
	}
}

// GET /api/vehicle-owners
func ListVehicleOwnersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var owners []models.VehicleOwner
		if err := database.DB.Order("name asc").Find(&owners).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list vehicle owners")
		}
		res := make([]VehicleOwnerResponse, 0, len(owners))
		for i := range owners {
			res = append(res, vehicleOwnerResponse(&owners[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/vehicle-owners/:id
func GetVehicleOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var o models.VehicleOwner
		if err := database.DB.First(&o, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle owner not found")
		}
		return c.JSON(vehicleOwnerResponse(&o))
	}
}

// POST /api/vehicle-owners — role approval grants the vehicle_owner
// role without provisioning a profile, so owners create it here.
func CreateVehicleOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateVehicleOwnerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.NIC = strings.TrimSpace(body.NIC)
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		targetID := callerID
		if body.UserID != nil && auth.IsAdmin(c) {
			targetID = *body.UserID
		} else if !auth.IsAdmin(c) {
			var user models.User
			if err := database.DB.Preload("Roles").First(&user, callerID).Error; err != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
			}
			if !user.HasRole(models.RoleVehicleOwner) {
				return fiber.NewError(fiber.StatusForbidden, "The vehicle_owner role is required")
			}
		}

		var count int64
		database.DB.Model(&models.VehicleOwner{}).Where("nic = ? OR user_id = ?", body.NIC, targetID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "A vehicle owner with this NIC or user already exists")
		}

		o := models.VehicleOwner{
			UserID:         targetID,
			Name:           body.Name,
			NIC:            body.NIC,
			BusinessMail:   body.BusinessMail,
			ContactNumbers: toJSON(body.ContactNumbers),
			Locations:      toJSON(body.Locations),
			Description:    body.Description,
		}
		if err := database.DB.Create(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create vehicle owner")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":       "Vehicle owner created",
			"vehicle_owner": vehicleOwnerResponse(&o),
		})
	}
}

// PUT /api/vehicle-owners/:id — profile owner or admin.
func UpdateVehicleOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var o models.VehicleOwner
		if err := database.DB.First(&o, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle owner not found")
		}
		if o.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this profile")
		}

		var body UpdateVehicleOwnerRequest
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
		if body.ContactNumbers != nil {
			o.ContactNumbers = toJSON(*body.ContactNumbers)
		}
		if body.Locations != nil {
			o.Locations = toJSON(*body.Locations)
		}
		if body.Description != nil {
			o.Description = *body.Description
		}

		if err := database.DB.Save(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update vehicle owner")
		}

		return c.JSON(fiber.Map{
			"message":       "Vehicle owner updated",
			"vehicle_owner": vehicleOwnerResponse(&o),
		})
	}
}

// DELETE /api/admin/vehicle-owners/:id
func DeleteVehicleOwnerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var o models.VehicleOwner
		if err := database.DB.First(&o, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vehicle owner not found")
		}
		if err := database.DB.Delete(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete vehicle owner")
		}
		return c.JSON(fiber.Map{"message": "Vehicle owner deleted"})
	}
}
