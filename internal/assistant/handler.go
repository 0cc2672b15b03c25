package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"lankatrails-backend/internal/database"
	"lankatrails-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	fallbackReply = "Sorry, the travel assistant is unavailable right now. Please try again in a moment."
	maxMatches    = 10
	askTimeout    = 25 * time.Second
)

type AskRequest struct {
	Message string `json:"message"`
}

type SpotSuggestion struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	District string `json:"district"`
	Category string `json:"category"`
}

// POST /api/assistant — always answers 200; an external-service failure
// becomes an apologetic reply instead of an error status.
func AskHandler(client ChatCompletionClient, model string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AskRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		message := strings.TrimSpace(body.Message)
		if message == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Message is required")
		}

		spots := matchSpots(message)

		suggestions := make([]SpotSuggestion, 0, len(spots))
		for _, s := range spots {
			suggestions = append(suggestions, SpotSuggestion{
				ID:       s.ID,
				Name:     s.Name,
				District: s.District,
				Category: s.Category,
			})
		}

		ctx, cancel := context.WithTimeout(c.Context(), askTimeout)
		defer cancel()

		reply := fallbackReply
		if client != nil {
			resp, err := client.Complete(ctx, ChatCompletionRequest{
				Model:       model,
				Temperature: 0.7,
				Messages: []ChatMessage{
					{Role: "system", Content: systemPrompt(spots)},
					{Role: "user", Content: message},
				},
			})
			if err != nil {
				log.Printf("assistant completion failed: %v", err)
			} else {
				reply = resp.Content
			}
		}

		return c.JSON(fiber.Map{
			"reply":       reply,
			"suggestions": suggestions,
		})
	}
}

// matchSpots runs an OR-matched substring search with the lowercase
// whitespace-delimited keywords of the message.
func matchSpots(message string) []models.Location {
	keywords := strings.Fields(strings.ToLower(message))
	if len(keywords) == 0 {
		return nil
	}

	dbq := database.DB.Model(&models.Location{})
	var clauses []string
	var args []interface{}
	for _, kw := range keywords {
		like := "%" + kw + "%"
		clauses = append(clauses,
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(district) LIKE ? OR LOWER(category) LIKE ?")
		args = append(args, like, like, like, like)
	}

	var spots []models.Location
	if err := dbq.Where(strings.Join(clauses, " OR "), args...).
		Limit(maxMatches).Find(&spots).Error; err != nil {
		log.Printf("assistant spot search failed: %v", err)
		return nil
	}
	return spots
}

func systemPrompt(spots []models.Location) string {
	var b strings.Builder
	b.WriteString("You are a travel assistant for a Sri Lanka tourism directory. ")
	b.WriteString("Answer briefly and helpfully. When relevant, recommend from these spots:\n")
	if len(spots) == 0 {
		b.WriteString("(no matching spots in the catalog)\n")
	}
	for _, s := range spots {
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", s.Name, s.District, s.Category, firstSentence(s.Description))
	}
	return b.String()
}

func firstSentence(s string) string {
	if idx := strings.IndexAny(s, ".!?"); idx > 0 && idx < 200 {
		return s[:idx+1]
	}
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
