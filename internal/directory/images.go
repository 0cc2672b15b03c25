package directory

import (
	"fmt"
	"io"
	"mime/multipart"

	"lankatrails-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// orderedImages keeps Preload("Images") in display order.
func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("order_index asc")
}

func locationFolder(id uint) string { return fmt.Sprintf("locations/%d", id) }
func guideFolder(id uint) string    { return fmt.Sprintf("guides/%d", id) }
func hotelFolder(id uint) string    { return fmt.Sprintf("hotels/%d", id) }
func shopFolder(id uint) string     { return fmt.Sprintf("shops/%d", id) }
func vehicleFolder(id uint) string  { return fmt.Sprintf("vehicles/%d", id) }
func itemFolder(id uint) string     { return fmt.Sprintf("items/%d", id) }

// storedImage is the shape shared by every per-entity image table.
type storedImage struct {
	Path       string
	OrderIndex int
	AltText    string
}

// formImageFiles collects uploaded files from the multipart form under
// the given keys ("images" and "images[]" are both accepted).
func formImageFiles(c *fiber.Ctx, keys ...string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	var result []*multipart.FileHeader
	for _, key := range keys {
		if headers, ok := form.File[key]; ok {
			result = append(result, headers...)
		}
	}
	return result
}

// storeUploads writes uploaded files into the entity folder, numbering
// them from startIndex so appended images continue the existing order.
func storeUploads(store storage.Storage, folder string, files []*multipart.FileHeader, startIndex int) ([]storedImage, error) {
	stored := make([]storedImage, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}

		name := storage.Filename(startIndex+i, fh.Filename)
		path, err := store.Save(folder, name, data)
		if err != nil {
			return nil, err
		}
		stored = append(stored, storedImage{Path: path, OrderIndex: startIndex + i})
	}
	return stored, nil
}

// reindexImages renumbers surviving rows of an image table to a
// contiguous zero-based order_index. ids must already be sorted by the
// previous order.
func reindexImages[T any](tx *gorm.DB, ids []uint) error {
	for i, id := range ids {
		if err := tx.Model(new(T)).Where("id = ?", id).Update("order_index", i).Error; err != nil {
			return err
		}
	}
	return nil
}

// formValues returns the multipart form values under the given keys
// (used for remove_images path lists).
func formValues(c *fiber.Ctx, keys ...string) []string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	var result []string
	for _, key := range keys {
		if values, ok := form.Value[key]; ok {
			for _, v := range values {
				if v != "" {
					result = append(result, v)
				}
			}
		}
	}
	return result
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
