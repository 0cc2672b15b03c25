package review

import (
	"fmt"
	"io"
	"mime/multipart"

	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/storage"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReviewResponse struct {
	ID         uint     `json:"id"`
	UserID     uint     `json:"user_id"`
	UserName   string   `json:"user_name,omitempty"`
	EntityType string   `json:"entity_type"`
	EntityID   uint     `json:"entity_id"`
	Rating     int      `json:"rating"`
	Comment    string   `json:"comment"`
	Images     []string `json:"images"`
	CreatedAt  string   `json:"created_at"`
}

type CreateReviewRequest struct {
	EntityType string `json:"entity_type" form:"entity_type" validate:"required"`
	EntityID   uint   `json:"entity_id" form:"entity_id" validate:"required"`
	Rating     int    `json:"rating" form:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" form:"comment"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" form:"rating"`
	Comment *string `json:"comment" form:"comment"`
}

func reviewResponse(store storage.Storage, r *models.Review) ReviewResponse {
	res := ReviewResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		UserName:   r.User.Name,
		EntityType: string(r.EntityType),
		EntityID:   r.EntityID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Images:     make([]string, 0, len(r.Images)),
		CreatedAt:  r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for _, img := range r.Images {
		res.Images = append(res.Images, store.URL(img.ImagePath))
	}
	return res
}

func orderedReviewImages(db *gorm.DB) *gorm.DB {
	return db.Order("order_index asc")
}

func reviewFolder(id uint) string {
	return fmt.Sprintf("reviews/%d", id)
}

func formFiles(c *fiber.Ctx, keys ...string) []*multipart.FileHeader {
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

// saveReviewImages stores up to limit uploads and creates image rows
// numbered from startIndex.
func saveReviewImages(store storage.Storage, db *gorm.DB, reviewID uint, files []*multipart.FileHeader, startIndex, limit int) error {
	for i, fh := range files {
		if startIndex+i >= limit {
			break
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return err
		}

		name := storage.Filename(startIndex+i, fh.Filename)
		path, err := store.Save(reviewFolder(reviewID), name, data)
		if err != nil {
			return err
		}
		if err := db.Create(&models.ReviewImage{
			ReviewID:   reviewID,
			ImagePath:  path,
			OrderIndex: startIndex + i,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

// GET /api/reviews/:entityType/:entityId — public. An entity with no
// reviews yields an empty array, not a 404.
func ListByEntityHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityID, err := c.ParamsInt("entityId")
		if err != nil || entityID < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid entity id")
		}

		entityType := models.ReviewEntityType(c.Params("entityType"))
		if _, ok := targets[entityType]; !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown entity type")
		}

		var reviews []models.Review
		if err := database.DB.Preload("User").Preload("Images", orderedReviewImages).
			Where("entity_type = ? AND entity_id = ?", entityType, entityID).
			Order("created_at desc").Find(&reviews).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list reviews")
		}

		res := make([]ReviewResponse, 0, len(reviews))
		for i := range reviews {
			res = append(res, reviewResponse(store, &reviews[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/reviews — authenticated; up to 5 images.
func CreateReviewHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		entityType, exists, allowed := ResolveTarget(database.DB, body.EntityType, body.EntityID)
		if !allowed {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown entity type")
		}
		if !exists {
			return fiber.NewError(fiber.StatusNotFound, "Review target not found")
		}

		r := models.Review{
			UserID:     userID,
			EntityType: entityType,
			EntityID:   body.EntityID,
			Rating:     body.Rating,
			Comment:    body.Comment,
		}
		if err := database.DB.Create(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create review")
		}

		files := formFiles(c, "images", "images[]")
		if err := saveReviewImages(store, database.DB, r.ID, files, 0, models.MaxReviewImages); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store review images")
		}

		database.DB.Preload("User").Preload("Images", orderedReviewImages).First(&r, r.ID)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Review created",
			"review":  reviewResponse(store, &r),
		})
	}
}

// PUT /api/reviews/:id — author only. remove_images paths are dropped
// first, new uploads are appended, and the set is capped at 5 with a
// contiguous order.
func UpdateReviewHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var r models.Review
		if err := database.DB.Preload("Images", orderedReviewImages).First(&r, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Review not found")
		}
		if r.UserID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Not the author of this review")
		}

		var body UpdateReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Rating != nil {
			if *body.Rating < 1 || *body.Rating > 5 {
				return validation.Respond(c, map[string]string{"rating": "must be between 1 and 5"})
			}
			r.Rating = *body.Rating
		}
		if body.Comment != nil {
			r.Comment = *body.Comment
		}

		removeList := formValues(c, "remove_images", "remove_images[]")
		files := formFiles(c, "images", "images[]")

		tx := database.DB.Begin()
		if err := tx.Save(&r).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update review")
		}

		surviving := 0
		for _, img := range r.Images {
			removed := false
			for _, p := range removeList {
				if p == img.ImagePath {
					removed = true
					break
				}
			}
			if removed {
				if err := tx.Delete(&models.ReviewImage{}, img.ID).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Could not remove review images")
				}
				_ = store.Delete(img.ImagePath)
				continue
			}
			if err := tx.Model(&models.ReviewImage{}).Where("id = ?", img.ID).Update("order_index", surviving).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Could not reorder review images")
			}
			surviving++
		}

		if err := saveReviewImages(store, tx, r.ID, files, surviving, models.MaxReviewImages); err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Could not store review images")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update review")
		}

		database.DB.Preload("User").Preload("Images", orderedReviewImages).First(&r, r.ID)
		return c.JSON(fiber.Map{
			"message": "Review updated",
			"review":  reviewResponse(store, &r),
		})
	}
}

// DELETE /api/reviews/:id — author or admin.
func DeleteReviewHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var r models.Review
		if err := database.DB.Preload("Images").First(&r, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Review not found")
		}
		if r.UserID != userID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the author of this review")
		}

		if err := database.DB.Where("review_id = ?", r.ID).Delete(&models.ReviewImage{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete review images")
		}
		if err := database.DB.Delete(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete review")
		}
		_ = store.DeleteFolder(reviewFolder(r.ID))

		return c.JSON(fiber.Map{"message": "Review deleted"})
	}
}
