package rolerequest

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"strings"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/mailer"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/storage"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmitRequest struct {
	Role      string                 `json:"role"`
	ExtraData map[string]interface{} `json:"extra_data"`
}

type RequestResponse struct {
	ID        uint                   `json:"id"`
	UserID    uint                   `json:"user_id"`
	UserName  string                 `json:"user_name,omitempty"`
	Role      string                 `json:"role"`
	Status    string                 `json:"status"`
	ExtraData map[string]interface{} `json:"extra_data"`
	CreatedAt string                 `json:"created_at"`
}

func toResponse(r *models.RoleRequest) RequestResponse {
	extra := map[string]interface{}{}
	if len(r.ExtraData) > 0 {
		_ = json.Unmarshal(r.ExtraData, &extra)
	}
	return RequestResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		UserName:  r.User.Name,
		Role:      string(r.Role.Name),
		Status:    string(r.Status),
		ExtraData: extra,
		CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/role-requests
func SubmitHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body SubmitRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		roleName := models.RoleName(strings.TrimSpace(body.Role))

		var role models.Role
		if err := database.DB.Where("name = ?", roleName).First(&role).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Role not found")
		}

		def, ok := Lookup(roleName)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Role not found")
		}

		var user models.User
		if err := database.DB.Preload("Roles").First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}
		if user.HasRole(roleName) {
			return fiber.NewError(fiber.StatusConflict, "You already hold this role")
		}

		var pending int64
		database.DB.Model(&models.RoleRequest{}).
			Where("user_id = ? AND role_id = ? AND status = ?", userID, role.ID, models.RequestPending).
			Count(&pending)
		if pending > 0 {
			return fiber.NewError(fiber.StatusConflict, "A pending request for this role already exists")
		}

		if body.ExtraData == nil {
			body.ExtraData = map[string]interface{}{}
		}
		if errs := validation.Map(body.ExtraData, def.Schema); errs != nil {
			return validation.Respond(c, errs)
		}

		// Guide applications may carry inline-encoded images; persist
		// them and keep only the stored references.
		if roleName == models.RoleGuide {
			if err := persistInlineImages(store, body.ExtraData); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Could not decode application images")
			}
		}

		extraJSON, err := json.Marshal(body.ExtraData)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid extra_data payload")
		}

		req := models.RoleRequest{
			UserID:    userID,
			RoleID:    role.ID,
			Status:    models.RequestPending,
			ExtraData: datatypes.JSON(extraJSON),
		}
		if err := database.DB.Create(&req).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create role request")
		}

		req.User = user
		req.Role = role
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Role request submitted",
			"request": toResponse(&req),
		})
	}
}

// persistInlineImages replaces base64 entries in extra_data["images"]
// with stored paths. Entries that already look like paths are kept.
func persistInlineImages(store storage.Storage, extra map[string]interface{}) error {
	raw, ok := extra["images"].([]interface{})
	if !ok {
		return nil
	}

	stored := make([]interface{}, 0, len(raw))
	seq := 0
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}

		data, ext, isInline := decodeInlineImage(s)
		if !isInline {
			stored = append(stored, s)
			continue
		}

		name := storage.Filename(seq, "upload"+ext)
		path, err := store.Save("role-requests", name, data)
		if err != nil {
			return err
		}
		stored = append(stored, path)
		seq++
	}

	extra["images"] = stored
	return nil
}

// decodeInlineImage accepts "data:image/png;base64,..." payloads and
// bare base64 blobs. Anything short or that fails to decode is treated
// as a stored path; note the base64 alphabet itself contains "/", so
// only decode validity distinguishes a blob from a path. Stored paths
// never decode, their "_" and "." are outside the alphabet.
func decodeInlineImage(s string) ([]byte, string, bool) {
	ext := ".jpg"
	payload := s

	if strings.HasPrefix(s, "data:") {
		parts := strings.SplitN(s, ",", 2)
		if len(parts) != 2 {
			return nil, "", false
		}
		if strings.Contains(parts[0], "image/png") {
			ext = ".png"
		}
		payload = parts[1]
	} else if len(s) < 128 {
		return nil, "", false
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	return data, ext, true
}

// GET /api/role-requests (caller's own requests)
func ListOwnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var requests []models.RoleRequest
		if err := database.DB.Preload("Role").Preload("User").
			Where("user_id = ?", userID).
			Order("created_at desc").Find(&requests).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list role requests")
		}

		res := make([]RequestResponse, 0, len(requests))
		for i := range requests {
			res = append(res, toResponse(&requests[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/admin/role-requests?status=pending
func ListAllHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Role").Preload("User").Order("created_at desc")
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var requests []models.RoleRequest
		if err := dbq.Find(&requests).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list role requests")
		}

		res := make([]RequestResponse, 0, len(requests))
		for i := range requests {
			res = append(res, toResponse(&requests[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/role-requests/:id/approve
//
// Status change, role grant and profile provisioning happen in one
// transaction; a failure in any step leaves the request pending.
func ApproveHandler(m mailer.Mailer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var req models.RoleRequest
		if err := database.DB.Preload("Role").Preload("User").First(&req, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Role request not found")
		}

		if req.Status == models.RequestAccepted {
			return c.JSON(fiber.Map{
				"message": "Role request already accepted",
				"request": toResponse(&req),
			})
		}
		if req.Status == models.RequestRejected {
			return fiber.NewError(fiber.StatusConflict, "Role request was already rejected")
		}

		def, ok := Lookup(req.Role.Name)
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "No definition for requested role")
		}

		extra := map[string]interface{}{}
		if len(req.ExtraData) > 0 {
			if err := json.Unmarshal(req.ExtraData, &extra); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Stored extra_data is corrupt")
			}
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not start transaction")
		}

		if err := tx.Model(&models.RoleRequest{}).Where("id = ?", req.ID).
			Update("status", models.RequestAccepted).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update request status")
		}

		if err := attachRole(tx, req.UserID, req.RoleID); err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not grant role")
		}

		if def.Provision != nil {
			if err := def.Provision(tx, req.UserID, extra); err != nil {
				tx.Rollback()
				log.Printf("provisioning %s profile for user %d failed: %v", req.Role.Name, req.UserID, err)
				return fiber.NewError(fiber.StatusInternalServerError, "Could not provision role profile")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not commit approval")
		}

		mailer.SendAsync(m, req.User.Email, "Role request approved",
			"Your application for the "+string(req.Role.Name)+" role has been approved.")

		req.Status = models.RequestAccepted
		return c.JSON(fiber.Map{
			"message": "Role request approved",
			"request": toResponse(&req),
		})
	}
}

// attachRole inserts into the pivot only when the pair is absent, so a
// repeated approval never duplicates the grant.
func attachRole(tx *gorm.DB, userID, roleID uint) error {
	var count int64
	if err := tx.Table("user_roles").
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, roleID).Error
}

// POST /api/admin/role-requests/:id/reject
func RejectHandler(m mailer.Mailer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var req models.RoleRequest
		if err := database.DB.Preload("Role").Preload("User").First(&req, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Role request not found")
		}

		if req.Status != models.RequestPending {
			return fiber.NewError(fiber.StatusConflict, "Role request was already processed")
		}

		if err := database.DB.Model(&req).Update("status", models.RequestRejected).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not reject role request")
		}

		mailer.SendAsync(m, req.User.Email, "Role request rejected",
			"Your application for the "+string(req.Role.Name)+" role has been rejected.")

		req.Status = models.RequestRejected
		return c.JSON(fiber.Map{
			"message": "Role request rejected",
			"request": toResponse(&req),
		})
	}
}

// RetractRole removes the pivot grant and any role_request rows for the
// (user, role) pair. Guide deletion runs this inside its own
// transaction so profile removal and role cleanup stay atomic.
func RetractRole(tx *gorm.DB, userID uint, roleName models.RoleName) error {
	var role models.Role
	if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM user_roles WHERE user_id = ? AND role_id = ?", userID, role.ID).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ? AND role_id = ?", userID, role.ID).
		Delete(&models.RoleRequest{}).Error
}
