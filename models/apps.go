package models

import (
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AppID identifies one game or app on the portal. The set is closed: adding a
// game means adding a constant here plus an extractor/validation case, which
// keeps every switch over AppID exhaustive.
type AppID string

const (
	AppHillClimb     AppID = "hill-climb"
	AppMonsterTruck  AppID = "monster-truck"
	AppCheckers      AppID = "checkers"
	AppChess         AppID = "chess"
	AppOregonTrail   AppID = "oregon-trail"
	AppFlappyBird    AppID = "flappy-bird"
	App2048          AppID = "2048"
	AppSnake         AppID = "snake"
	AppMemoryMatch   AppID = "memory-match"
	AppJokeGenerator AppID = "joke-generator"
	AppEndlessRunner AppID = "endless-runner"
	AppWeather       AppID = "weather"
	AppCookieClicker AppID = "cookie-clicker"
	AppToyFinder     AppID = "toy-finder"
	AppQuoridor      AppID = "quoridor"
	AppPlatformer    AppID = "platformer"
	AppRetroArcade   AppID = "retro-arcade"
	AppBlitzBomber   AppID = "blitz-bomber"
	AppDinoRunner    AppID = "dino-runner"
	AppBreakout      AppID = "breakout"
	AppSpaceInvaders AppID = "space-invaders"
	AppDrawingApp    AppID = "drawing-app"
	AppHextris       AppID = "hextris"
	AppAsteroids     AppID = "asteroids"
	AppDrumMachine   AppID = "drum-machine"
	AppVirtualPet    AppID = "virtual-pet"
	AppBomberman     AppID = "bomberman"
	AppTrivia        AppID = "trivia"
	AppWordle        AppID = "wordle"
	AppMathAttack    AppID = "math-attack"
)

// ValidAppIDs lists every app the portal knows about.
var ValidAppIDs = []AppID{
	AppHillClimb, AppMonsterTruck, AppCheckers, AppChess, AppOregonTrail,
	AppFlappyBird, App2048, AppSnake, AppMemoryMatch, AppJokeGenerator,
	AppEndlessRunner, AppWeather, AppCookieClicker, AppToyFinder, AppQuoridor,
	AppPlatformer, AppRetroArcade, AppBlitzBomber, AppDinoRunner, AppBreakout,
	AppSpaceInvaders, AppDrawingApp, AppHextris, AppAsteroids, AppDrumMachine,
	AppVirtualPet, AppBomberman, AppTrivia, AppWordle, AppMathAttack,
}

var validAppIDSet = func() map[AppID]struct{} {
	m := make(map[AppID]struct{}, len(ValidAppIDs))
	for _, id := range ValidAppIDs {
		m[id] = struct{}{}
	}
	return m
}()

// IsValidAppID reports whether id is a known game/app.
func IsValidAppID(id AppID) bool {
	_, ok := validAppIDSet[id]
	return ok
}

// ParseAppID normalizes a raw path parameter (case, spaces, unicode) into an
// AppID via slugification and checks it against the closed set.
func ParseAppID(raw string) (AppID, bool) {
	id := AppID(slug.Make(raw))
	if !IsValidAppID(id) {
		return "", false
	}
	return id, true
}

// AppMeta is display metadata for one game, used by profile and rank listings.
type AppMeta struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

var appIcons = map[AppID]string{
	AppHillClimb:     "🚗",
	AppMonsterTruck:  "🚛",
	AppCheckers:      "🔴",
	AppChess:         "♟️",
	AppOregonTrail:   "🐂",
	AppFlappyBird:    "🐦",
	App2048:          "🔢",
	AppSnake:         "🐍",
	AppMemoryMatch:   "🃏",
	AppJokeGenerator: "😂",
	AppEndlessRunner: "🏃",
	AppWeather:       "⛅",
	AppCookieClicker: "🍪",
	AppToyFinder:     "🧸",
	AppQuoridor:      "🧱",
	AppPlatformer:    "🍄",
	AppRetroArcade:   "🕹️",
	AppBlitzBomber:   "✈️",
	AppDinoRunner:    "🦖",
	AppBreakout:      "🧱",
	AppSpaceInvaders: "👾",
	AppDrawingApp:    "🎨",
	AppHextris:       "⬡",
	AppAsteroids:     "☄️",
	AppDrumMachine:   "🥁",
	AppVirtualPet:    "🐾",
	AppBomberman:     "💣",
	AppTrivia:        "❓",
	AppWordle:        "🟩",
	AppMathAttack:    "➕",
}

var titleCaser = cases.Title(language.AmericanEnglish)

// MetaFor returns display metadata for an app. Names are derived from the
// slug ("hill-climb" → "Hill Climb"), icons from the table above.
func MetaFor(id AppID) AppMeta {
	name := titleCaser.String(strings.ReplaceAll(string(id), "-", " "))
	return AppMeta{
		Name: name,
		Icon: appIcons[id],
	}
}
