package review

import (
	"lankatrails-backend/internal/auth"
	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"
	"lankatrails-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type WebsiteReviewResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

type WebsiteReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// GET /api/website-reviews — public.
func ListWebsiteReviewsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reviews []models.WebsiteReview
		if err := database.DB.Preload("User").Order("created_at desc").Find(&reviews).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list website reviews")
		}

		res := make([]WebsiteReviewResponse, 0, len(reviews))
		for _, r := range reviews {
			res = append(res, WebsiteReviewResponse{
				ID:        r.ID,
				UserID:    r.UserID,
				UserName:  r.User.Name,
				Rating:    r.Rating,
				Comment:   r.Comment,
				CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}

// POST /api/website-reviews — authenticated.
func CreateWebsiteReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body WebsiteReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		r := models.WebsiteReview{UserID: userID, Rating: body.Rating, Comment: body.Comment}
		if err := database.DB.Create(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create website review")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Website review created",
			"review": WebsiteReviewResponse{
				ID:        r.ID,
				UserID:    r.UserID,
				Rating:    r.Rating,
				Comment:   r.Comment,
				CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
			},
		})
	}
}

// PUT /api/website-reviews/:id — author or admin.
func UpdateWebsiteReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var r models.WebsiteReview
		if err := database.DB.First(&r, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Website review not found")
		}
		if r.UserID != userID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the author of this review")
		}

		var body WebsiteReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if errs := validation.Struct(body); errs != nil {
			return validation.Respond(c, errs)
		}

		r.Rating = body.Rating
		r.Comment = body.Comment
		if err := database.DB.Save(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update website review")
		}

		return c.JSON(fiber.Map{"message": "Website review updated"})
	}
}

// DELETE /api/website-reviews/:id — author or admin.
func DeleteWebsiteReviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var r models.WebsiteReview
		if err := database.DB.First(&r, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Website review not found")
		}
		if r.UserID != userID && !auth.IsAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Not the author of this review")
		}

		if err := database.DB.Delete(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete website review")
		}
		return c.JSON(fiber.Map{"message": "Website review deleted"})
	}
}
