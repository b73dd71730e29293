// handlers/progress.go — cloud-save routes
package handlers

import (
	"errors"
	"fmt"
	"time"

	"game-portal-system/middleware"
	"game-portal-system/models"
	"game-portal-system/services"

	"github.com/gofiber/fiber/v2"
)

type saveProgressBody struct {
	Data           map[string]interface{} `json:"data"`
	LocalTimestamp int64                  `json:"localTimestamp"`
	Merge          bool                   `json:"merge"`
}

func SetupProgressRoutes(app *fiber.App, progressService *services.ProgressService, limiter *middleware.RateLimiter) {
	// 🔐 User context is attached per route, not via Group("/"): a group on
	// the root prefix would leak the requirement onto every route registered
	// after it, including the public leaderboard and ROM reads.
	userCtx := middleware.UserContextMiddleware()

	// GET /progress — every game's progress for the caller (profile page).
	app.Get("/progress", userCtx, func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if rl := limiter.AllowProgress(userID); !rl.Success {
			return rateLimited(c, rl.ResetIn)
		}

		all, err := progressService.ListProgress(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch progress",
			})
		}

		list := make([]fiber.Map, 0, len(all))
		for _, p := range all {
			list = append(list, fiber.Map{
				"appId":        p.AppID,
				"data":         p.Data,
				"updatedAt":    p.UpdatedAt,
				"lastSyncedAt": p.LastSyncedAt,
			})
		}
		return c.JSON(fiber.Map{"progress": list, "count": len(list)})
	})

	// GET /progress/:appId — one game's progress.
	app.Get("/progress/:appId", userCtx, func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if rl := limiter.AllowProgress(userID); !rl.Success {
			return rateLimited(c, rl.ResetIn)
		}

		appID, ok := models.ParseAppID(c.Params("appId"))
		if !ok {
			return invalidAppID(c)
		}

		prog, err := progressService.GetProgress(userID, appID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.JSON(fiber.Map{
					"data":         nil,
					"lastSyncedAt": nil,
					"message":      "no saved progress found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch progress",
			})
		}

		return c.JSON(fiber.Map{
			"data":         prog.Data,
			"lastSyncedAt": prog.LastSyncedAt,
			"updatedAt":    prog.UpdatedAt,
		})
	})

	// POST /progress/:appId — save (optionally merging with server state).
	app.Post("/progress/:appId", userCtx, func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if rl := limiter.AllowProgress(userID); !rl.Success {
			return rateLimited(c, rl.ResetIn)
		}

		appID, ok := models.ParseAppID(c.Params("appId"))
		if !ok {
			return invalidAppID(c)
		}

		var body saveProgressBody
		if err := c.BodyParser(&body); err != nil || body.Data == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid progress data",
			})
		}

		result, err := progressService.SaveProgress(userID, appID, services.SaveProgressInput{
			Data:           body.Data,
			LocalTimestamp: body.LocalTimestamp,
			Merge:          body.Merge,
		})
		if err != nil {
			if services.IsValidationError(err) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save progress",
			})
		}

		return c.JSON(fiber.Map{
			"success":           true,
			"updatedAt":         result.UpdatedAt,
			"merged":            result.Merged,
			"conflicts":         result.Conflicts,
			"leaderboardSynced": result.LeaderboardSynced,
		})
	})

	// DELETE /progress/:appId — "start over"; cascades the leaderboard row.
	app.Delete("/progress/:appId", userCtx, func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		if rl := limiter.AllowDelete(userID); !rl.Success {
			return rateLimited(c, rl.ResetIn)
		}

		appID, ok := models.ParseAppID(c.Params("appId"))
		if !ok {
			return invalidAppID(c)
		}

		if err := progressService.DeleteProgress(userID, appID); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "no progress found to delete",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete progress",
			})
		}

		return c.JSON(fiber.Map{"success": true, "deleted": true})
	})
}

func rateLimited(c *fiber.Ctx, resetIn time.Duration) error {
	seconds := int(resetIn.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error": fmt.Sprintf("too many requests. Try again in %ds", seconds),
	})
}

func invalidAppID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid app ID: " + c.Params("appId"),
	})
}
