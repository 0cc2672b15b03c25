package owner

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db
	return db
}

func testApp(userID uint, admin bool) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	authed := app.Group("", func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, userID)
		c.Locals(auth.CtxIsAdminKey, admin)
		return c.Next()
	})
	authed.Get("/api/vehicle-owners", ListVehicleOwnersHandler())
	authed.Get("/api/vehicle-owners/:id", GetVehicleOwnerHandler())
	authed.Post("/api/vehicle-owners", CreateVehicleOwnerHandler())
	authed.Put("/api/vehicle-owners/:id", UpdateVehicleOwnerHandler())
	authed.Delete("/api/vehicle-owners/:id", DeleteVehicleOwnerHandler())
	return app
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedUserWithRole(t *testing.T, db *gorm.DB, email string, role models.RoleName) models.User {
	t.Helper()
	u := models.User{Name: "Owner", Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	if role != "" {
		var r models.Role
		require.NoError(t, db.Where("name = ?", role).First(&r).Error)
		require.NoError(t, db.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", u.ID, r.ID).Error)
	}
	return u
}

func TestCreateVehicleOwnerRequiresRole(t *testing.T) {
	db := setupDB(t)
	u := seedUserWithRole(t, db, "norole@example.com", "")
	app := testApp(u.ID, false)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/vehicle-owners", fiber.Map{
		"name": "Sunil", "nic": "781234567V",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var count int64
	db.Model(&models.VehicleOwner{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCreateVehicleOwnerSelfService(t *testing.T) {
	db := setupDB(t)
	u := seedUserWithRole(t, db, "sunil@example.com", models.RoleVehicleOwner)
	app := testApp(u.ID, false)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/vehicle-owners", fiber.Map{
		"name":            "Sunil Fernando",
		"nic":             "781234567V",
		"business_mail":   "sunil@example.com",
		"contact_numbers": []string{"0751234567"},
		"locations":       []string{"Galle", "Matara"},
		"description":     "Van hires",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var o models.VehicleOwner
	require.NoError(t, db.First(&o, "user_id = ?", u.ID).Error)
	assert.Equal(t, "781234567V", o.NIC)
	assert.JSONEq(t, `["Galle","Matara"]`, string(o.Locations))

	// one profile per user
	resp, err = app.Test(jsonRequest(t, "POST", "/api/vehicle-owners", fiber.Map{
		"name": "Sunil Again", "nic": "999999999V",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUpdateVehicleOwnerOwnership(t *testing.T) {
	db := setupDB(t)
	u := seedUserWithRole(t, db, "sunil@example.com", models.RoleVehicleOwner)
	o := models.VehicleOwner{UserID: u.ID, Name: "Sunil", NIC: "781234567V"}
	require.NoError(t, db.Create(&o).Error)
	target := "/api/vehicle-owners/" + strconv.FormatUint(uint64(o.ID), 10)

	resp, err := testApp(u.ID+1, false).Test(jsonRequest(t, "PUT", target, fiber.Map{"name": "X"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = testApp(u.ID, false).Test(jsonRequest(t, "PUT", target, fiber.Map{
		"name": "Sunil F", "locations": []string{"Galle"},
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&o, o.ID).Error)
	assert.Equal(t, "Sunil F", o.Name)
	assert.JSONEq(t, `["Galle"]`, string(o.Locations))
}

func TestDeleteVehicleOwner(t *testing.T) {
	db := setupDB(t)
	o := models.VehicleOwner{UserID: 5, Name: "Sunil", NIC: "781234567V"}
	require.NoError(t, db.Create(&o).Error)

	resp, err := testApp(999, true).Test(httptest.NewRequest("DELETE",
		"/api/vehicle-owners/"+strconv.FormatUint(uint64(o.ID), 10), nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.VehicleOwner{}).Count(&count)
	assert.EqualValues(t, 0, count)
}
