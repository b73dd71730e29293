// handlers/roms.go — retro-arcade ROM delivery from R2
package handlers

import (
	"log"
	"strings"

	"game-portal-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupRomRoutes(app *fiber.App) {
	// GET /roms/* — stream a ROM from the private bucket. ROM sets never
	// change once seeded, so clients may cache them for a year.
	app.Get("/roms/*", func(c *fiber.Ctx) error {
		key := strings.TrimPrefix(c.Params("*"), "/")
		if key == "" || strings.Contains(key, "..") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid ROM path",
			})
		}

		body, length, err := utils.GetObjectFromR2("roms/" + key)
		if err != nil {
			log.Printf("⚠️ [ROMS] fetch failed for %s: %v", key, err)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "ROM not found",
			})
		}

		c.Set("Content-Type", "application/octet-stream")
		c.Set("Cache-Control", "public, max-age=31536000, immutable")
		if length >= 0 {
			return c.SendStream(body, int(length))
		}
		return c.SendStream(body)
	})
}
