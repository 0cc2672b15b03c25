package directory

import (
	"encoding/json"
	"strings"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/rolerequest"
	"lankatrails-backend/internal/storage"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type GuideResponse struct {
	ID             uint            `json:"id"`
	UserID         uint            `json:"user_id"`
	Name           string          `json:"name"`
	NIC            string          `json:"nic"`
	BusinessMail   string          `json:"business_mail"`
	ContactNumbers []string        `json:"contact_numbers"`
	Languages      []string        `json:"languages"`
	Locations      []string        `json:"locations"`
	Description    string          `json:"description"`
	Images         []ImageResponse `json:"images"`
}

type CreateGuideRequest struct {
	Name           string `json:"name" form:"name" validate:"required,max=150"`
	NIC            string `json:"nic" form:"nic" validate:"required,max=20"`
	BusinessMail   string `json:"business_mail" form:"business_mail" validate:"omitempty,email"`
	ContactNumbers string `json:"contact_numbers" form:"contact_numbers"` // JSON array
	Languages      string `json:"languages" form:"languages"`             // JSON array
	Locations      string `json:"locations" form:"locations"`             // JSON array
	Description    string `json:"description" form:"description"`
	UserID         *uint  `json:"user_id" form:"user_id"` // admin only
}

type UpdateGuideRequest struct {
	Name           *string `json:"name" form:"name"`
	BusinessMail   *string `json:"business_mail" form:"business_mail"`
	ContactNumbers *string `json:"contact_numbers" form:"contact_numbers"`
	Languages      *string `json:"languages" form:"languages"`
	Locations      *string `json:"locations" form:"locations"`
	Description    *string `json:"description" form:"description"`
}

func jsonStrings(data datatypes.JSON) []string {
	out := []string{}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &out)
	}
	return out
}

func parseJSONList(raw string) (datatypes.JSON, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, false
		}
		data, _ := json.Marshal(list)
		return datatypes.JSON(data), true
	}
	// comma separated fallback
	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	data, _ := json.Marshal(list)
	return datatypes.JSON(data), true
}

func guideResponse(store storage.Storage, g *models.Guide) GuideResponse {
	res := GuideResponse{
		ID:             g.ID,
		UserID:         g.UserID,
		Name:           g.Name,
		NIC:            g.NIC,
		BusinessMail:   g.BusinessMail,
		ContactNumbers: jsonStrings(g.ContactNumbers),
		Languages:      jsonStrings(g.Languages),
		Locations:      jsonStrings(g.Locations),
		Description:    g.Description,
		Images:         make([]ImageResponse, 0, len(g.Images)),
	}
	for _, img := range g.Images {
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

// GET /api/guides?location=Kandy
func ListGuidesHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Images", orderedImages).Model(&models.Guide{})

		if loc := strings.TrimSpace(c.Query("location")); loc != "" {
			dbq = dbq.Where("LOWER(locations) LIKE ?", "%"+strings.ToLower(loc)+"%")
		}

		var guides []models.Guide
		if err := dbq.Order("name asc").Find(&guides).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list guides")
		}

		res := make([]GuideResponse, 0, len(guides))
		for i := range guides {
			res = append(res, guideResponse(store, &guides[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/guides/:id
func GetGuideHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var g models.Guide
		if err := database.DB.Preload("Images", orderedImages).First(&g, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Guide not found")
		}
		return c.JSON(guideResponse(store, &g))
	}
}

// POST /api/guides — self-service for guide-role holders; admins may
// create on behalf of another user via user_id.
func CreateGuideHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateGuideRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
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
			if !user.HasRole(models.RoleGuide) {
				return fiber.NewError(fiber.StatusForbidden, "The guide role is required")
			}
		}

		var count int64
		database.DB.Model(&models.Guide{}).Where("nic = ?", body.NIC).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "A guide with this NIC already exists")
		}
		database.DB.Model(&models.Guide{}).Where("user_id = ?", targetID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "This user already has a guide profile")
		}

		contactNumbers, ok := parseJSONList(body.ContactNumbers)
		if !ok {
			return validation.Respond(c, map[string]string{"contact_numbers": "must be a JSON array of strings"})
		}
		languages, ok := parseJSONList(body.Languages)
		if !ok {
			return validation.Respond(c, map[string]string{"languages": "must be a JSON array of strings"})
		}
		locations, ok := parseJSONList(body.Locations)
		if !ok {
			return validation.Respond(c, map[string]string{"locations": "must be a JSON array of strings"})
		}

		g := models.Guide{
			UserID:         targetID,
			Name:           body.Name,
			NIC:            body.NIC,
			BusinessMail:   body.BusinessMail,
			ContactNumbers: contactNumbers,
			Languages:      languages,
			Locations:      locations,
			Description:    body.Description,
		}

		tx := database.DB.Begin()
		if err := tx.Create(&g).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create guide")
		}

		files := formImageFiles(c, "images", "images[]")
		stored, err := storeUploads(store, guideFolder(g.ID), files, 0)
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.GuideImage{
				GuideID:    g.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create guide")
		}

		database.DB.Preload("Images", orderedImages).First(&g, g.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Guide created",
			"guide":   guideResponse(store, &g),
		})
	}
}

// PUT /api/guides/:id — owner or admin. New images append after the
// existing set; paths listed under remove_images are deleted first and
// the survivors renumbered.
func UpdateGuideHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var g models.Guide
		if err := database.DB.Preload("Images", orderedImages).First(&g, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Guide not found")
		}
		if g.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this guide profile")
		}

		var body UpdateGuideRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return validation.Respond(c, map[string]string{"name": "this field is required"})
			}
			g.Name = name
		}
		if body.BusinessMail != nil {
			g.BusinessMail = *body.BusinessMail
		}
		if body.Description != nil {
			g.Description = *body.Description
		}
		for _, f := range []struct {
			raw  *string
			dest *datatypes.JSON
			name string
		}{
			{body.ContactNumbers, &g.ContactNumbers, "contact_numbers"},
			{body.Languages, &g.Languages, "languages"},
			{body.Locations, &g.Locations, "locations"},
		} {
			if f.raw == nil {
				continue
			}
			parsed, ok := parseJSONList(*f.raw)
			if !ok {
				return validation.Respond(c, map[string]string{f.name: "must be a JSON array of strings"})
			}
			*f.dest = parsed
		}

		removeList := formValues(c, "remove_images", "remove_images[]")
		files := formImageFiles(c, "images", "images[]")

		tx := database.DB.Begin()
		if err := tx.Save(&g).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update guide")
		}

		surviving := make([]uint, 0, len(g.Images))
		for _, img := range g.Images {
			if contains(removeList, img.ImagePath) {
				if err := tx.Delete(&models.GuideImage{}, img.ID).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Could not remove images")
				}
				_ = store.Delete(img.ImagePath)
				continue
			}
			surviving = append(surviving, img.ID)
		}
		if err := reindexImages[models.GuideImage](tx, surviving); err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reorder images")
		}

		stored, err := storeUploads(store, guideFolder(g.ID), files, len(surviving))
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
		}
		for _, img := range stored {
			if err := tx.Create(&models.GuideImage{
				GuideID:    g.ID,
				ImagePath:  img.Path,
				OrderIndex: img.OrderIndex,
			}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not store images")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update guide")
		}

		database.DB.Preload("Images", orderedImages).First(&g, g.ID)
		return c.JSON(fiber.Map{
			"message": "Guide updated",
			"guide":   guideResponse(store, &g),
		})
	}
}

// DELETE /api/guides/:id — owner or admin. Removes the profile, its
// image rows and files, and retracts the guide role (pivot +
// role_request rows) in one transaction.
func DeleteGuideHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var g models.Guide
		if err := database.DB.Preload("Images").First(&g, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Guide not found")
		}
		if g.UserID != callerID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the owner of this guide profile")
		}

		tx := database.DB.Begin()
		if err := tx.Where("guide_id = ?", g.ID).Delete(&models.GuideImage{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete guide images")
		}
		if err := tx.Delete(&g).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete guide")
		}
		if err := rolerequest.RetractRole(tx, g.UserID, models.RoleGuide); err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not retract guide role")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete guide")
		}

		_ = store.DeleteFolder(guideFolder(g.ID))

		return c.JSON(fiber.Map{"message": "Guide deleted"})
	}
}
