package handlers

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/dto"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// tooManyRequests writes the 429 with a Retry-After header in whole seconds.
func tooManyRequests(c *fiber.Ctx, retryAfter time.Duration) error {
	c.Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
		Error: true, Message: "Too many requests. Please try again later.",
	})
}

// rateLimited maps a service throttle error to the 429 response; the second
// return reports whether the error was a throttle at all.
func rateLimited(c *fiber.Ctx, err error) (error, bool) {
	var rl *services.RateLimitError
	if !errors.As(err, &rl) {
		return nil, false
	}
	return tooManyRequests(c, rl.RetryAfter), true
}

func pagination(page, limit int, total int64) dto.Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return dto.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid id in path",
	})
}
