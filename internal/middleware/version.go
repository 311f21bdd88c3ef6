// version.go
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

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/transform-studio/internal/types"
)

// APIVersion is the only API version served
const APIVersion = "1.0.0"

// VersionKey is the Locals key holding the negotiated API version
const VersionKey = "apiVersion"

// VersionMiddleware reads the X-Api-Version header, normalizes the 1.x
// aliases, and rejects versions this service does not speak.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requested := strings.TrimSpace(c.Get("X-Api-Version", APIVersion))

		switch strings.TrimPrefix(requested, "v") {
		case "1", "1.0", "1.0.0":
		default:
			return types.NewError(fiber.StatusBadRequest, "api.version",
				"Unsupported API version '%s', this service speaks %s", requested, APIVersion)
		}

		c.Locals(VersionKey, APIVersion)
		c.Set("X-Api-Version", APIVersion)
		return c.Next()
	}
}
