package directory

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
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
	authed.Get("/api/guides", ListGuidesHandler(store))
	authed.Get("/api/guides/:id", GetGuideHandler(store))
	authed.Post("/api/guides", CreateGuideHandler(store))
	authed.Put("/api/guides/:id", UpdateGuideHandler(store))
	authed.Delete("/api/guides/:id", DeleteGuideHandler(store))
	authed.Get("/api/locations", ListLocationsHandler(store))
	authed.Post("/api/locations", CreateLocationHandler(store))
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

// multipartRequest builds a form request with string fields and fake
// image files under "images".
func multipartRequest(t *testing.T, method, target string, fields map[string][]string, imageNames []string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	for _, name := range imageNames {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake-image-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func grantRole(t *testing.T, db *gorm.DB, userID uint, name models.RoleName) models.Role {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Where("name = ?", name).First(&role).Error)
	require.NoError(t, db.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, role.ID).Error)
	return role
}

func seedGuide(t *testing.T, db *gorm.DB, store storage.Storage, userID uint, imageCount int) models.Guide {
	t.Helper()
	g := models.Guide{UserID: userID, Name: "Kumari", NIC: "907654321V"}
	require.NoError(t, db.Create(&g).Error)
	for i := 0; i < imageCount; i++ {
		path, err := store.Save(guideFolder(g.ID), storage.Filename(i, "img.jpg"), []byte("img"))
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.GuideImage{GuideID: g.ID, ImagePath: path, OrderIndex: i}).Error)
	}
	require.NoError(t, db.Preload("Images", orderedImages).First(&g, g.ID).Error)
	return g
}

func TestCreateGuideSelfService(t *testing.T) {
	db := setupDB(t)
	u := models.User{Name: "Kumari", Email: "kumari@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	grantRole(t, db, u.ID, models.RoleGuide)

	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	app := testApp(u.ID, false, store)

	req := multipartRequest(t, "POST", "/api/guides", map[string][]string{
		"name":            {"Kumari Jayasinghe"},
		"nic":             {"907654321V"},
		"business_mail":   {"kumari@example.com"},
		"contact_numbers": {`["0712345678"]`},
		"languages":       {"English, Sinhala"},
		"locations":       {`["Kandy","Ella"]`},
		"description":     {"Hill country trekking"},
	}, []string{"a.jpg", "b.jpg"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var g models.Guide
	require.NoError(t, db.Preload("Images", orderedImages).First(&g, "user_id = ?", u.ID).Error)
	assert.Equal(t, "907654321V", g.NIC)
	assert.JSONEq(t, `["English","Sinhala"]`, string(g.Languages), "comma lists normalize to JSON arrays")
	require.Len(t, g.Images, 2)
	assert.Equal(t, 0, g.Images[0].OrderIndex)
	assert.Equal(t, 1, g.Images[1].OrderIndex)
}

func TestCreateGuideRequiresRole(t *testing.T) {
	db := setupDB(t)
	u := models.User{Name: "Kumari", Email: "kumari@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)

	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	app := testApp(u.ID, false, store)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/guides", fiber.Map{
		"name": "Kumari Jayasinghe", "nic": "907654321V",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "guide profiles require an approved guide role")

	var count int64
	db.Model(&models.Guide{}).Count(&count)
	assert.EqualValues(t, 0, count)

	// an admin creating on behalf of a user is not gated
	adminApp := testApp(u.ID, true, store)
	resp, err = adminApp.Test(jsonRequest(t, "POST", "/api/guides", fiber.Map{
		"name": "Kumari Jayasinghe", "nic": "907654321V",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCreateGuideDuplicateNIC(t *testing.T) {
	db := setupDB(t)
	u1 := models.User{Name: "A", Email: "a@example.com", PasswordHash: "x"}
	u2 := models.User{Name: "B", Email: "b@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u1).Error)
	require.NoError(t, db.Create(&u2).Error)
	grantRole(t, db, u2.ID, models.RoleGuide)

	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	seedGuide(t, db, store, u1.ID, 0)

	app := testApp(u2.ID, false, store)
	resp, err := app.Test(jsonRequest(t, "POST", "/api/guides", fiber.Map{
		"name": "Other", "nic": "907654321V",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUpdateGuideRemovesAndReindexesImages(t *testing.T) {
	db := setupDB(t)
	u := models.User{Name: "Kumari", Email: "kumari@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)

	root := t.TempDir()
	store := storage.NewLocalStorage(root, "http://localhost:8080/storage")
	g := seedGuide(t, db, store, u.ID, 3)
	middle := g.Images[1]

	app := testApp(u.ID, false, store)
	req := multipartRequest(t, "PUT", "/api/guides/"+strconv.FormatUint(uint64(g.ID), 10),
		map[string][]string{"remove_images": {middle.ImagePath}}, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var images []models.GuideImage
	require.NoError(t, db.Where("guide_id = ?", g.ID).Order("order_index asc").Find(&images).Error)
	require.Len(t, images, 2)
	assert.Equal(t, g.Images[0].ImagePath, images[0].ImagePath)
	assert.Equal(t, 0, images[0].OrderIndex)
	assert.Equal(t, g.Images[2].ImagePath, images[1].ImagePath)
	assert.Equal(t, 1, images[1].OrderIndex, "surviving images renumber contiguously")

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(middle.ImagePath)))
	assert.True(t, os.IsNotExist(err), "removed image file should be deleted from storage")
}

func TestUpdateGuideAppendsImagesAfterSurvivors(t *testing.T) {
	db := setupDB(t)
	u := models.User{Name: "Kumari", Email: "kumari@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)

	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	g := seedGuide(t, db, store, u.ID, 2)

	app := testApp(u.ID, false, store)
	req := multipartRequest(t, "PUT", "/api/guides/"+strconv.FormatUint(uint64(g.ID), 10),
		nil, []string{"new.jpg"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var images []models.GuideImage
	require.NoError(t, db.Where("guide_id = ?", g.ID).Order("order_index asc").Find(&images).Error)
	require.Len(t, images, 3)
	assert.Equal(t, 2, images[2].OrderIndex)
}

func TestUpdateGuideForbiddenForOtherUser(t *testing.T) {
	db := setupDB(t)
	u := models.User{Name: "Kumari", Email: "kumari@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)

	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	g := seedGuide(t, db, store, u.ID, 0)

	app := testApp(u.ID+1, false, store)
	resp, err := app.Test(jsonRequest(t, "PUT",
		"/api/guides/"+strconv.FormatUint(uint64(g.ID), 10), fiber.Map{"name": "Hijack"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDeleteGuideCascades(t *testing.T) {
	db := setupDB(t)
	u := models.User{Name: "Kumari", Email: "kumari@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)

	var role models.Role
	require.NoError(t, db.Where("name = ?", models.RoleGuide).First(&role).Error)
	require.NoError(t, db.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", u.ID, role.ID).Error)
	require.NoError(t, db.Create(&models.RoleRequest{UserID: u.ID, RoleID: role.ID, Status: models.RequestAccepted}).Error)

	root := t.TempDir()
	store := storage.NewLocalStorage(root, "http://localhost:8080/storage")
	g := seedGuide(t, db, store, u.ID, 2)

	app := testApp(u.ID, false, store)
	resp, err := app.Test(httptest.NewRequest("DELETE",
		"/api/guides/"+strconv.FormatUint(uint64(g.ID), 10), nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.Guide{}).Where("id = ?", g.ID).Count(&count)
	assert.EqualValues(t, 0, count)
	db.Model(&models.GuideImage{}).Where("guide_id = ?", g.ID).Count(&count)
	assert.EqualValues(t, 0, count)

	db.Table("user_roles").Where("user_id = ? AND role_id = ?", u.ID, role.ID).Count(&count)
	assert.EqualValues(t, 0, count, "guide role is retracted with the profile")
	db.Model(&models.RoleRequest{}).Where("user_id = ? AND role_id = ?", u.ID, role.ID).Count(&count)
	assert.EqualValues(t, 0, count, "the original role request is removed as well")

	_, err = os.Stat(filepath.Join(root, "guides", strconv.FormatUint(uint64(g.ID), 10)))
	assert.True(t, os.IsNotExist(err), "storage folder should be removed")
}

func TestListGuidesByLocation(t *testing.T) {
	db := setupDB(t)
	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")

	require.NoError(t, db.Create(&models.Guide{UserID: 1, Name: "A", NIC: "1", Locations: []byte(`["Kandy","Ella"]`)}).Error)
	require.NoError(t, db.Create(&models.Guide{UserID: 2, Name: "B", NIC: "2", Locations: []byte(`["Galle"]`)}).Error)

	app := testApp(1, false, store)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/guides?location=kandy", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list []GuideResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Name)
}
