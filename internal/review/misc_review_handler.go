package review

import (
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Legacy feedback tables kept for the admin console: OtherReview and
// LocationHotelReview. Both are admin-managed full CRUD.

type OtherReviewRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Subject string `json:"subject"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type LocationHotelReviewRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Place   string `json:"place"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// GET /api/admin/other-reviews
func ListOtherReviewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reviews []models.OtherReview
		if err := database.DB.Order("created_at desc").Find(&reviews).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list reviews")
		}
		return c.JSON(reviewsOut(reviews))
	}
}

// POST /api/admin/other-reviews
func CreateOtherReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OtherReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		r := models.OtherReview{UserID: body.UserID, Subject: body.Subject, Rating: body.Rating, Comment: body.Comment}
		if err := database.DB.Create(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create review")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Review created", "id": r.ID})
	}
}

// PUT /api/admin/other-reviews/:id
func UpdateOtherReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var r models.OtherReview
		if err := database.DB.First(&r, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Review not found")
		}

		var body OtherReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		r.Subject = body.Subject
		r.Rating = body.Rating
		r.Comment = body.Comment
		if err := database.DB.Save(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update review")
		}
		return c.JSON(fiber.Map{"message": "Review updated"})
	}
}

// DELETE /api/admin/other-reviews/:id
func DeleteOtherReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.DB.Delete(&models.OtherReview{}, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete review")
		}
		return c.JSON(fiber.Map{"message": "Review deleted"})
	}
}

// GET /api/admin/location-hotel-reviews
func ListLocationHotelReviewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reviews []models.LocationHotelReview
		if err := database.DB.Order("created_at desc").Find(&reviews).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list reviews")
		}
		out := make([]fiber.Map, 0, len(reviews))
		for _, r := range reviews {
			out = append(out, fiber.Map{
				"id":         r.ID,
				"user_id":    r.UserID,
				"place":      r.Place,
				"rating":     r.Rating,
				"comment":    r.Comment,
				"created_at": r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(out)
	}
}

// POST /api/admin/location-hotel-reviews
func CreateLocationHotelReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LocationHotelReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		r := models.LocationHotelReview{UserID: body.UserID, Place: body.Place, Rating: body.Rating, Comment: body.Comment}
		if err := database.DB.Create(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create review")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Review created", "id": r.ID})
	}
}

// PUT /api/admin/location-hotel-reviews/:id
func UpdateLocationHotelReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var r models.LocationHotelReview
		if err := database.DB.First(&r, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Review not found")
		}

		var body LocationHotelReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		r.Place = body.Place
		r.Rating = body.Rating
		r.Comment = body.Comment
		if err := database.DB.Save(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update review")
		}
		return c.JSON(fiber.Map{"message": "Review updated"})
	}
}

// DELETE /api/admin/location-hotel-reviews/:id
func DeleteLocationHotelReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.DB.Delete(&models.LocationHotelReview{}, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete review")
		}
		return c.JSON(fiber.Map{"message": "Review deleted"})
	}
}

func reviewsOut(reviews []models.OtherReview) []fiber.Map {
	out := make([]fiber.Map, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, fiber.Map{
			"id":         r.ID,
			"user_id":    r.UserID,
			"subject":    r.Subject,
			"rating":     r.Rating,
			"comment":    r.Comment,
			"created_at": r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return out
}
