package docstore

import (
	"context"
	"errors"
	"fmt"

	"dermadect/internal/models"

	"github.com/redis/go-redis/v9"
)

// SaveGameStats overwrites the user's stats document in full; the aggregator
// always writes a complete recomputed document rather than patching fields.
func SaveGameStats(ctx context.Context, cmd redis.Cmdable, stats *models.GameStats) (*models.GameStats, error) {
	if stats.UserID == "" {
		return nil, errors.New("invalid stats")
	}

	if stats.SchemaVersion == 0 {
		stats.SchemaVersion = models.GameStatsSchemaVersion
	}

	if err := setDocument(ctx, cmd, dbKeyGameStats(stats.UserID), stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// GetGameStats returns ErrNotFound for users who never completed a game;
// callers must keep that distinct from zero-valued stats.
func GetGameStats(ctx context.Context, cmd redis.Cmdable, userID string) (*models.GameStats, error) {
	var stats models.GameStats
	if err := getDocument(ctx, cmd, dbKeyGameStats(userID), &stats); err != nil {
		return nil, err
	}

	if stats.SchemaVersion > models.GameStatsSchemaVersion {
		return nil, fmt.Errorf("unsupported stats schema version %d", stats.SchemaVersion)
	}

	if stats.Categories == nil {
		stats.Categories = map[string]*models.CategoryStat{}
	}

	return &stats, nil
}
