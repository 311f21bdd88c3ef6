// common.go
//
// A local data service for composing and inspecting identity platform transforms.
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of transform-studio.
// transform-studio is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// transform-studio is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A
// PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with transform-studio.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/middleware"
	"github.com/localnerve/transform-studio/internal/services"
	"github.com/localnerve/transform-studio/internal/types"
	"github.com/localnerve/transform-studio/internal/utils"
)

// serviceError maps service errors onto the response envelope
func serviceError(c *fiber.Ctx, err error, errorType string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalid):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, errorType)
	case errors.Is(err, services.ErrPlatform):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadGateway, "platform.fetch")
	}
	log.Printf("%s failed: %v", errorType, err)
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}

// badRequest sends a 400 for unreadable input
func badRequest(c *fiber.Ctx, message, errorType string) error {
	return utils.ErrorResponse(c, message, fiber.StatusBadRequest, errorType)
}

// tenantID reads the tenant resolved by middleware.Tenant, falling back to the
// raw route parameter
func tenantID(c *fiber.Ctx) string {
	if t, ok := c.Locals(middleware.TenantKey).(services.Tenant); ok {
		return t.TenantID
	}
	return c.Params("tenant")
}

// paramIndex parses a non-negative integer route parameter
func paramIndex(c *fiber.Ctx, name string) (int, bool) {
	i, err := strconv.Atoi(c.Params(name))
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// queryBool reads a boolean query flag; absent or unparsable means false
func queryBool(c *fiber.Ctx, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

// ErrorHandler renders errors that escape handlers
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Check for middleware errors
	var ce *types.CustomError
	if errors.As(err, &ce) {
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
		if ce.Err != nil {
			log.Printf("%s: %v", ce.Type, ce.Err)
		}
	}

	return utils.ErrorResponse(c, message, code, errorType)
}

// NotFound is the catch-all for unmatched routes
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}
