package models

import "time"

const GameStatsSchemaVersion = 1

type CategoryStat struct {
	Correct int `json:"correct" msgpack:"correct"`
	Total   int `json:"total" msgpack:"total"`
}

// GameStats rolls completed sessions into lifetime per-user totals. The
// average is always recomputed from the two cumulative counters; it is the
// aggregator's job to keep them in step.
type GameStats struct {
	UserID        string                   `json:"user_id" msgpack:"user_id"`
	TotalGames    int                      `json:"total_games" msgpack:"total_games"`
	TotalScore    int                      `json:"total_score" msgpack:"total_score"`
	AverageScore  float64                  `json:"average_score" msgpack:"average_score"`
	Categories    map[string]*CategoryStat `json:"categories" msgpack:"categories"`
	LastPlayed    *time.Time               `json:"last_played" msgpack:"last_played"`
	SchemaVersion int                      `json:"schema_version" msgpack:"schema_version"`
}

func NewGameStats(userID string) *GameStats {
	return &GameStats{
		UserID:        userID,
		Categories:    map[string]*CategoryStat{},
		SchemaVersion: GameStatsSchemaVersion,
	}
}
