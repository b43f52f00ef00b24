package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dermadect/internal/docstore"
	"dermadect/internal/models"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

type ServiceStats struct {
	container *do.Injector
	redisDB   redis.UniversalClient
}

func NewServiceStats(container *do.Injector) (*ServiceStats, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	return &ServiceStats{container, redisDB}, nil
}

// UpdateUserStats folds a completed session into the user's lifetime
// statistics. Every answered question counts toward its category, whether
// or not the session ran to the last question.
func (service *ServiceStats) UpdateUserStats(ctx context.Context, session *models.GameSession) (*models.GameStats, error) {
	stats, err := service.GetUserStats(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			return nil, err
		}
		stats = models.NewGameStats(session.UserID)
	}

	stats.TotalGames += 1
	stats.TotalScore += session.Score
	stats.AverageScore = float64(stats.TotalScore) / float64(stats.TotalGames)
	now := time.Now()
	stats.LastPlayed = &now

	for _, answer := range session.Answers {
		category := answer.Question.Category
		if _, ok := stats.Categories[category]; !ok {
			stats.Categories[category] = &models.CategoryStat{}
		}
		stats.Categories[category].Total += 1
		if answer.Correct {
			stats.Categories[category].Correct += 1
		}
	}

	stats, err = docstore.SaveGameStats(ctx, service.redisDB, stats)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return stats, nil
}

func (service *ServiceStats) GetUserStats(ctx context.Context, userID string) (*models.GameStats, error) {
	return docstore.GetGameStats(ctx, service.redisDB, userID)
}

// FormatStats renders the user's statistics, or an invitation to play when
// no games have been recorded yet.
func (service *ServiceStats) FormatStats(ctx context.Context, userID string) (string, error) {
	stats, err := service.GetUserStats(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return "No game statistics found. Play a game to get started!", nil
		}
		return "", err
	}

	message := []string{
		"Your Game Statistics:",
		fmt.Sprintf("Total Games Played: %d", stats.TotalGames),
		fmt.Sprintf("Total Score: %d", stats.TotalScore),
		fmt.Sprintf("Average Score: %.1f", stats.AverageScore),
		"\nCategory Performance:",
	}

	for category, scores := range stats.Categories {
		percentage := float64(scores.Correct) / float64(scores.Total) * 100
		message = append(message, fmt.Sprintf("%s: %d/%d (%.1f%%)", category, scores.Correct, scores.Total, percentage))
	}

	if stats.LastPlayed != nil {
		message = append(message, fmt.Sprintf("\nLast Played: %s", stats.LastPlayed.Format("2006-01-02 15:04:05")))
	}

	return strings.Join(message, "\n"), nil
}
