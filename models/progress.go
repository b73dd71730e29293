package models

import (
	"time"

	"gorm.io/datatypes"
)

// AppProgress is the record of record for one user's saved state in one game.
// The data blob is opaque to the server: each game owns its own shape, and the
// server only validates it at the boundary. One row per (user, app) — the
// unique composite index is what makes concurrent tab saves collapse into a
// single upsert instead of duplicate rows.
type AppProgress struct {
	ID           string            `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       string            `json:"user_id" gorm:"not null;index:idx_app_progress_user;uniqueIndex:idx_user_app"`
	AppID        AppID             `json:"app_id" gorm:"not null;uniqueIndex:idx_user_app"`
	Data         datatypes.JSONMap `json:"data" gorm:"not null"`
	LastSyncedAt *time.Time        `json:"last_synced_at"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"not null"`
}

func (AppProgress) TableName() string { return "app_progress" }

// AppTransaction is the per-progress change ledger reserved for an
// exploit-proof replay merge ("spend locally, sync gets old coins back").
// Nothing writes it yet — the sync path uses the last-write-wins heuristic —
// but the table ships so a future merge can be backfilled against it.
type AppTransaction struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProgressID string    `json:"progress_id" gorm:"not null;index"`
	Type       string    `json:"type" gorm:"not null"` // "spend" | "earn" | "unlock"
	Amount     int64     `json:"amount"`
	ItemID     string    `json:"item_id"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null;autoCreateTime"`

	Progress AppProgress `json:"-" gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE"`
}

func (AppTransaction) TableName() string { return "app_transactions" }
