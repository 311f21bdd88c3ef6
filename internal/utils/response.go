package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message      string   `json:"message"`
	Ok           bool     `json:"ok"`
	Timestamp    string   `json:"timestamp"`
	AffectedRows int      `json:"affectedRows"`
	Affected     []string `json:"affected"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SuccessResponse sends data as JSON with the given status
func SuccessResponse(c *fiber.Ctx, data any, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends the error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// NotFoundResponse sends a 404 error envelope
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "notFound")
}

// MutationSuccessResponse reports the ids a delete removed
func MutationSuccessResponse(c *fiber.Ctx, affected []string) error {
	if affected == nil {
		affected = []string{}
	}
	return c.Status(fiber.StatusOK).JSON(SuccessResponseStruct{
		Message:      "Success",
		Ok:           true,
		Timestamp:    timestamp(),
		AffectedRows: len(affected),
		Affected:     affected,
	})
}
