// handlers/leaderboard.go — leaderboard + gaming profile routes
package handlers

import (
	"errors"
	"strconv"

	"game-portal-system/middleware"
	"game-portal-system/models"
	"game-portal-system/services"

	"github.com/gofiber/fiber/v2"
)

type updateProfileBody struct {
	ShowOnLeaderboards *bool `json:"showOnLeaderboards"`
}

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	// User context is per route; the leaderboard page itself is public.
	userCtx := middleware.UserContextMiddleware()

	// GET /leaderboards/my-ranks — the caller's standing in every game they
	// hold an entry for. Must register before /:appId or fiber routes it as
	// a game.
	app.Get("/leaderboards/my-ranks", userCtx, func(c *fiber.Ctx) error {
		ranks, err := leaderboardService.GetMyRanks(middleware.UserID(c))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch ranks",
			})
		}
		return c.JSON(ranks)
	})

	// GET /leaderboards/:appId — public ranked page. Anonymous reads are fine;
	// includeMe only resolves when the Gateway attached a user.
	app.Get("/leaderboards/:appId", middleware.OptionalUserContextMiddleware(), func(c *fiber.Ctx) error {
		appID, ok := models.ParseAppID(c.Params("appId"))
		if !ok {
			return invalidAppID(c)
		}
		if !services.HasLeaderboardSupport(appID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "leaderboards are not available for this game",
			})
		}

		query := services.LeaderboardQuery{
			Period:    models.TimePeriod(c.Query("period", string(models.PeriodAll))),
			Limit:     queryInt(c, "limit", 100),
			Offset:    queryInt(c, "offset", 0),
			IncludeMe: c.QueryBool("includeMe", false),
		}

		page, err := leaderboardService.GetLeaderboard(appID, middleware.UserID(c), query)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch leaderboard",
			})
		}
		return c.JSON(page)
	})

	// GET /gaming-profile — handle + visibility preference.
	app.Get("/gaming-profile", userCtx, func(c *fiber.Ctx) error {
		profile, err := leaderboardService.GetProfile(middleware.UserID(c))
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.JSON(fiber.Map{
					"profile": nil,
					"message": "no gaming profile yet - play a leaderboard game first",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch gaming profile",
			})
		}
		return c.JSON(fiber.Map{"profile": fiber.Map{
			"handle":             profile.Handle,
			"showOnLeaderboards": profile.ShowOnLeaderboards,
			"createdAt":          profile.CreatedAt,
		}})
	})

	// PATCH /gaming-profile — opt in/out of public leaderboards.
	app.Patch("/gaming-profile", userCtx, func(c *fiber.Ctx) error {
		var body updateProfileBody
		if err := c.BodyParser(&body); err != nil || body.ShowOnLeaderboards == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "showOnLeaderboards (boolean) is required",
			})
		}

		err := leaderboardService.UpdateProfile(middleware.UserID(c), *body.ShowOnLeaderboards)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "no gaming profile yet - play a leaderboard game first",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update gaming profile",
			})
		}
		return c.JSON(fiber.Map{"success": true, "showOnLeaderboards": *body.ShowOnLeaderboards})
	})
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
