// handlers/admin.go — operator-only endpoints
package handlers

import (
	"log"
	"os"

	"game-portal-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, backfillService *services.BackfillService) {
	adminSecret := os.Getenv("ADMIN_SECRET")

	// POST /admin/backfill-leaderboards — re-derive every leaderboard entry
	// from stored progress. Run after deploying a new score extractor.
	app.Post("/admin/backfill-leaderboards", func(c *fiber.Ctx) error {
		if adminSecret == "" || c.Get("X-Admin-Secret") != adminSecret {
			log.Printf("🚫 [ADMIN] rejected backfill request from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		results, err := backfillService.Run()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "backfill failed: " + err.Error(),
			})
		}
		return c.JSON(fiber.Map{"success": true, "results": results})
	})
}
