package directory

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLocationRequiresCoordinates(t *testing.T) {
	db := setupDB(t)
	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	app := testApp(1, true, store)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/locations", fiber.Map{
		"name": "Sigiriya Rock",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Errors, "latitude")
	assert.Contains(t, body.Errors, "longitude")

	var count int64
	db.Model(&models.Location{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCreateLocationWithImages(t *testing.T) {
	db := setupDB(t)
	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	app := testApp(1, true, store)

	req := multipartRequest(t, "POST", "/api/locations", map[string][]string{
		"name":      {"Sigiriya Rock"},
		"district":  {"Matale"},
		"category":  {"heritage"},
		"latitude":  {"7.957"},
		"longitude": {"80.760"},
	}, []string{"rock.jpg"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var l models.Location
	require.NoError(t, db.Preload("Images").First(&l, "name = ?", "Sigiriya Rock").Error)
	assert.InDelta(t, 7.957, l.Latitude, 0.0001)
	require.Len(t, l.Images, 1)
	assert.Equal(t, 0, l.Images[0].OrderIndex)

	// zero coordinates are valid input, only absence is rejected
	resp, err = app.Test(jsonRequest(t, "POST", "/api/locations", fiber.Map{
		"name": "Null Island Pier", "latitude": 0.0, "longitude": 0.0,
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

// A failed image-row insert must fail the whole create, not return 201
// with the image silently missing.
func TestCreateLocationImageInsertFailureRollsBack(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.LocationImage{}))

	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	app := testApp(1, true, store)

	req := multipartRequest(t, "POST", "/api/locations", map[string][]string{
		"name":      {"Sigiriya Rock"},
		"latitude":  {"7.957"},
		"longitude": {"80.760"},
	}, []string{"rock.jpg"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var count int64
	db.Model(&models.Location{}).Count(&count)
	assert.EqualValues(t, 0, count, "the location create rolls back with the image insert")
}

func TestListLocationsFilters(t *testing.T) {
	db := setupDB(t)
	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	app := testApp(1, false, store)

	require.NoError(t, db.Create(&models.Location{Name: "Mirissa Beach", District: "Matara", Category: "beach", Latitude: 5.944, Longitude: 80.459}).Error)
	require.NoError(t, db.Create(&models.Location{Name: "Temple of the Tooth", District: "Kandy", Category: "heritage", Latitude: 7.293, Longitude: 80.641}).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/locations?district=Kandy", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []LocationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Temple of the Tooth", list[0].Name)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/locations?q=beach", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Mirissa Beach", list[0].Name)
}

func TestGetLocationNotFound(t *testing.T) {
	_ = setupDB(t)
	store := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/storage")
	app := fiber.New()
	app.Get("/api/locations/:id", GetLocationHandler(store))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/locations/99", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
