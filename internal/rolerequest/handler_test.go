package rolerequest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/config"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/mailer"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/storage"

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

func testStore(t *testing.T) storage.Storage {
	t.Helper()
	return storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
}

// testApp mounts the role-request routes behind a fake authenticated
// caller.
func testApp(userID uint, admin bool, store storage.Storage) *fiber.App {
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
	authed.Post("/api/role-requests", SubmitHandler(store))
	authed.Get("/api/role-requests", ListOwnHandler())
	authed.Get("/api/admin/role-requests", ListAllHandler())
	authed.Post("/api/admin/role-requests/:id/approve", ApproveHandler(&mailer.LogMailer{}))
	authed.Post("/api/admin/role-requests/:id/reject", RejectHandler(&mailer.LogMailer{}))
	return app
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: "Test User", Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func roleByName(t *testing.T, db *gorm.DB, name models.RoleName) models.Role {
	t.Helper()
	var r models.Role
	require.NoError(t, db.Where("name = ?", name).First(&r).Error)
	return r
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func shopOwnerPayload() fiber.Map {
	return fiber.Map{
		"role": "shop_owner",
		"extra_data": fiber.Map{
			"name":           "Nimal Silva",
			"nic":            "851234567V",
			"business_mail":  "nimal@example.com",
			"contact_number": "0771234567",
		},
	}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "nimal@example.com")
	app := testApp(u.ID, false, testStore(t))

	resp, err := app.Test(jsonRequest(t, "POST", "/api/role-requests", shopOwnerPayload()), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var req models.RoleRequest
	require.NoError(t, db.Preload("Role").First(&req, "user_id = ?", u.ID).Error)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, models.RoleShopOwner, req.Role.Name)

	extra := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(req.ExtraData, &extra))
	assert.Equal(t, "851234567V", extra["nic"])
}

func TestSubmitUnknownRole(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "nimal@example.com")
	app := testApp(u.ID, false, testStore(t))

	resp, err := app.Test(jsonRequest(t, "POST", "/api/role-requests", fiber.Map{
		"role": "astronaut", "extra_data": fiber.Map{},
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmitSchemaValidation(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "nimal@example.com")
	app := testApp(u.ID, false, testStore(t))

	resp, err := app.Test(jsonRequest(t, "POST", "/api/role-requests", fiber.Map{
		"role":       "shop_owner",
		"extra_data": fiber.Map{"name": "Nimal"},
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Errors, "nic")
	assert.Contains(t, body.Errors, "business_mail")

	var count int64
	db.Model(&models.RoleRequest{}).Count(&count)
	assert.EqualValues(t, 0, count, "a rejected submission must not leave a row behind")
}

func TestSubmitConflictsWithHeldRole(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "nimal@example.com")
	role := roleByName(t, db, models.RoleShopOwner)
	require.NoError(t, db.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", u.ID, role.ID).Error)

	app := testApp(u.ID, false, testStore(t))
	resp, err := app.Test(jsonRequest(t, "POST", "/api/role-requests", shopOwnerPayload()), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestSubmitConflictsWithPendingRequest(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "nimal@example.com")
	app := testApp(u.ID, false, testStore(t))

	resp, err := app.Test(jsonRequest(t, "POST", "/api/role-requests", shopOwnerPayload()), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/role-requests", shopOwnerPayload()), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var count int64
	db.Model(&models.RoleRequest{}).Where("user_id = ?", u.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSubmitGuideStoresInlineImages(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "guide@example.com")
	app := testApp(u.ID, false, testStore(t))

	inline := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	resp, err := app.Test(jsonRequest(t, "POST", "/api/role-requests", fiber.Map{
		"role": "guide",
		"extra_data": fiber.Map{
			"name":            "Kumari Jayasinghe",
			"nic":             "907654321V",
			"business_mail":   "kumari@example.com",
			"contact_numbers": []string{"0712345678"},
			"images":          []string{inline},
			"languages":       []string{"English", "Sinhala"},
			"locations":       []string{"Kandy"},
			"description":     "Hill country trekking guide",
		},
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var req models.RoleRequest
	require.NoError(t, db.First(&req, "user_id = ?", u.ID).Error)
	extra := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(req.ExtraData, &extra))
	images := extra["images"].([]interface{})
	require.Len(t, images, 1)
	assert.True(t, strings.HasPrefix(images[0].(string), "role-requests/"),
		"inline image should be replaced with its stored path, got %v", images[0])
	assert.True(t, strings.HasSuffix(images[0].(string), ".png"))

	// approval provisions the guide profile, carrying the stored path over
	adminApp := testApp(999, true, testStore(t))
	resp, err = adminApp.Test(httptest.NewRequest("POST",
		"/api/admin/role-requests/"+itoa(req.ID)+"/approve", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var g models.Guide
	require.NoError(t, db.Preload("Images").First(&g, "user_id = ?", u.ID).Error)
	assert.Equal(t, "907654321V", g.NIC)
	require.Len(t, g.Images, 1)
	assert.Equal(t, images[0].(string), g.Images[0].ImagePath)
	assert.Equal(t, 0, g.Images[0].OrderIndex)
}

func TestApproveGrantsRoleAndProvisionsProfile(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "nimal@example.com")
	userApp := testApp(u.ID, false, testStore(t))
	adminApp := testApp(999, true, testStore(t))

	resp, err := userApp.Test(jsonRequest(t, "POST", "/api/role-requests", shopOwnerPayload()), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var req models.RoleRequest
	require.NoError(t, db.First(&req, "user_id = ?", u.ID).Error)

	resp, err = adminApp.Test(httptest.NewRequest("POST",
		"/api/admin/role-requests/"+itoa(req.ID)+"/approve", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&req, req.ID).Error)
	assert.Equal(t, models.RequestAccepted, req.Status)

	role := roleByName(t, db, models.RoleShopOwner)
	var pivots int64
	db.Table("user_roles").Where("user_id = ? AND role_id = ?", u.ID, role.ID).Count(&pivots)
	assert.EqualValues(t, 1, pivots)

	var owner models.ShopOwner
	require.NoError(t, db.First(&owner, "user_id = ?", u.ID).Error)
	assert.Equal(t, "851234567V", owner.NIC)

	// approving an accepted request is a no-op, not a second grant
	resp, err = adminApp.Test(httptest.NewRequest("POST",
		"/api/admin/role-requests/"+itoa(req.ID)+"/approve", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	db.Table("user_roles").Where("user_id = ? AND role_id = ?", u.ID, role.ID).Count(&pivots)
	assert.EqualValues(t, 1, pivots)
	var owners int64
	db.Model(&models.ShopOwner{}).Where("user_id = ?", u.ID).Count(&owners)
	assert.EqualValues(t, 1, owners)
}

func TestApproveVehicleOwnerGrantsRoleWithoutProfile(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "driver@example.com")
	userApp := testApp(u.ID, false, testStore(t))
	adminApp := testApp(999, true, testStore(t))

	resp, err := userApp.Test(jsonRequest(t, "POST", "/api/role-requests", fiber.Map{
		"role": "vehicle_owner",
		"extra_data": fiber.Map{
			"name":            "Sunil Fernando",
			"nic":             "781234567V",
			"business_mail":   "sunil@example.com",
			"contact_numbers": []string{"0751234567"},
			"locations":       []string{"Galle"},
			"description":     "Tuk-tuk and van hires",
		},
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var req models.RoleRequest
	require.NoError(t, db.First(&req, "user_id = ?", u.ID).Error)

	resp, err = adminApp.Test(httptest.NewRequest("POST",
		"/api/admin/role-requests/"+itoa(req.ID)+"/approve", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	role := roleByName(t, db, models.RoleVehicleOwner)
	var pivots int64
	db.Table("user_roles").Where("user_id = ? AND role_id = ?", u.ID, role.ID).Count(&pivots)
	assert.EqualValues(t, 1, pivots)

	// vehicle owners create their profile through the self-service
	// endpoint; approval provisions nothing
	var owners int64
	db.Model(&models.VehicleOwner{}).Where("user_id = ?", u.ID).Count(&owners)
	assert.EqualValues(t, 0, owners)
}

func TestRejectIsTerminal(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "nimal@example.com")
	userApp := testApp(u.ID, false, testStore(t))
	adminApp := testApp(999, true, testStore(t))

	resp, err := userApp.Test(jsonRequest(t, "POST", "/api/role-requests", shopOwnerPayload()), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var req models.RoleRequest
	require.NoError(t, db.First(&req, "user_id = ?", u.ID).Error)

	resp, err = adminApp.Test(httptest.NewRequest("POST",
		"/api/admin/role-requests/"+itoa(req.ID)+"/reject", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&req, req.ID).Error)
	assert.Equal(t, models.RequestRejected, req.Status)

	// no role, no profile
	role := roleByName(t, db, models.RoleShopOwner)
	var pivots int64
	db.Table("user_roles").Where("user_id = ? AND role_id = ?", u.ID, role.ID).Count(&pivots)
	assert.EqualValues(t, 0, pivots)

	// no path back: approving or re-rejecting conflicts
	resp, err = adminApp.Test(httptest.NewRequest("POST",
		"/api/admin/role-requests/"+itoa(req.ID)+"/approve", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = adminApp.Test(httptest.NewRequest("POST",
		"/api/admin/role-requests/"+itoa(req.ID)+"/reject", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestListAllFiltersByStatus(t *testing.T) {
	db := setupDB(t)
	u1 := seedUser(t, db, "a@example.com")
	u2 := seedUser(t, db, "b@example.com")
	role := roleByName(t, db, models.RoleShopOwner)
	require.NoError(t, db.Create(&models.RoleRequest{UserID: u1.ID, RoleID: role.ID, Status: models.RequestPending}).Error)
	require.NoError(t, db.Create(&models.RoleRequest{UserID: u2.ID, RoleID: role.ID, Status: models.RequestAccepted}).Error)

	adminApp := testApp(999, true, testStore(t))
	resp, err := adminApp.Test(httptest.NewRequest("GET", "/api/admin/role-requests?status=pending", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list []RequestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, u1.ID, list[0].UserID)
}

func TestRetractRole(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "guide@example.com")
	role := roleByName(t, db, models.RoleGuide)
	require.NoError(t, db.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", u.ID, role.ID).Error)
	require.NoError(t, db.Create(&models.RoleRequest{UserID: u.ID, RoleID: role.ID, Status: models.RequestAccepted}).Error)

	require.NoError(t, RetractRole(db, u.ID, models.RoleGuide))

	var pivots int64
	db.Table("user_roles").Where("user_id = ? AND role_id = ?", u.ID, role.ID).Count(&pivots)
	assert.EqualValues(t, 0, pivots)
	var requests int64
	db.Model(&models.RoleRequest{}).Where("user_id = ? AND role_id = ?", u.ID, role.ID).Count(&requests)
	assert.EqualValues(t, 0, requests)
}

// Bare blobs are decoded too. The base64 alphabet includes "/", so a
// blob full of slashes must still be recognized as inline data and not
// mistaken for a stored path.
func TestSubmitGuideDecodesBareBase64WithSlashes(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "guide@example.com")
	app := testApp(u.ID, false, testStore(t))

	raw := bytes.Repeat([]byte{0xff}, 96)
	blob := base64.StdEncoding.EncodeToString(raw) // 128 chars, all "/"
	require.Contains(t, blob, "/")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/role-requests", fiber.Map{
		"role": "guide",
		"extra_data": fiber.Map{
			"name":            "Kumari Jayasinghe",
			"nic":             "907654321V",
			"business_mail":   "kumari@example.com",
			"contact_numbers": []string{"0712345678"},
			"images":          []string{blob},
			"languages":       []string{"English"},
			"locations":       []string{"Kandy"},
			"description":     "Hill country trekking guide",
		},
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var req models.RoleRequest
	require.NoError(t, db.First(&req, "user_id = ?", u.ID).Error)
	extra := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(req.ExtraData, &extra))
	images := extra["images"].([]interface{})
	require.Len(t, images, 1)
	assert.True(t, strings.HasPrefix(images[0].(string), "role-requests/"),
		"bare base64 should be decoded and stored, got %v", images[0])
	assert.NotEqual(t, blob, images[0].(string))
}

// End to end through the real JWT middleware: register, log in, submit,
// approve as an admin, and confirm the role shows up on the profile.
func TestRoleRequestEndToEnd(t *testing.T) {
	db := setupDB(t)
	cfg := &config.Config{JWTSecret: strings.Repeat("k", 32)}
	store := testStore(t)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Post("/api/auth/register", auth.RegisterHandler(cfg))
	protected := app.Group("", auth.JWTMiddleware(cfg))
	protected.Get("/api/auth/me", auth.MeHandler())
	protected.Post("/api/role-requests", SubmitHandler(store))
	adminRoutes := protected.Group("/api/admin", auth.RequireAdmin())
	adminRoutes.Post("/role-requests/:id/approve", ApproveHandler(&mailer.LogMailer{}))

	resp, err := app.Test(jsonRequest(t, "POST", "/api/auth/register", fiber.Map{
		"name": "Nimal Silva", "email": "nimal@example.com", "password": "secret-password",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registered))

	req := jsonRequest(t, "POST", "/api/role-requests", shopOwnerPayload())
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// the user token cannot reach the admin surface
	var rr models.RoleRequest
	require.NoError(t, db.First(&rr, "status = ?", models.RequestPending).Error)
	req = httptest.NewRequest("POST", "/api/admin/role-requests/"+itoa(rr.ID)+"/approve", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminUser := models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", IsAdmin: true}
	require.NoError(t, db.Create(&adminUser).Error)
	adminToken, err := auth.GenerateToken(cfg.JWTSecret, &adminUser)
	require.NoError(t, err)

	req = httptest.NewRequest("POST", "/api/admin/role-requests/"+itoa(rr.ID)+"/approve", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me struct {
		Roles []string `json:"roles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, []string{"shop_owner"}, me.Roles)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
