package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dermadect/internal/docstore"
	"dermadect/internal/llm"
	"dermadect/internal/models"

	"github.com/stretchr/testify/require"
)

func finishedSession(userID string, score int, answers []models.AnswerRecord) *models.GameSession {
	now := time.Now()
	return &models.GameSession{
		SessionID:    "session-" + userID,
		UserID:       userID,
		NumQuestions: len(answers),
		Score:        score,
		Status:       models.SessionCompleted,
		StartTime:    now.Add(-time.Minute),
		EndTime:      &now,
		Answers:      answers,
	}
}

func answerRecords(category string, correct, total int) []models.AnswerRecord {
	records := make([]models.AnswerRecord, 0, total)
	for i := 0; i < total; i++ {
		records = append(records, models.AnswerRecord{
			Index:     i,
			Question:  models.Question{Category: category},
			Correct:   i < correct,
			Timestamp: time.Now(),
		})
	}
	return records
}

func TestUpdateUserStatsFirstGame(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Err: errors.New("model offline")})
	service := invokeStats(t, injector)
	ctx := context.Background()

	stats, err := service.UpdateUserStats(ctx, finishedSession("alice", 3, answerRecords(models.CategoryBodyParts, 3, 5)))
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalGames)
	require.Equal(t, 3, stats.TotalScore)
	require.Equal(t, 3.0, stats.AverageScore)
	require.NotNil(t, stats.LastPlayed)
	require.Equal(t, &models.CategoryStat{Correct: 3, Total: 5}, stats.Categories[models.CategoryBodyParts])
}

func TestUpdateUserStatsAccumulates(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Err: errors.New("model offline")})
	service := invokeStats(t, injector)
	ctx := context.Background()

	_, err := service.UpdateUserStats(ctx, finishedSession("alice", 5, answerRecords(models.CategoryBodyParts, 5, 5)))
	require.NoError(t, err)
	stats, err := service.UpdateUserStats(ctx, finishedSession("alice", 2, answerRecords("nutrition", 2, 5)))
	require.NoError(t, err)

	require.Equal(t, 2, stats.TotalGames)
	require.Equal(t, 7, stats.TotalScore)
	require.Equal(t, 3.5, stats.AverageScore)
	require.Equal(t, &models.CategoryStat{Correct: 5, Total: 5}, stats.Categories[models.CategoryBodyParts])
	require.Equal(t, &models.CategoryStat{Correct: 2, Total: 5}, stats.Categories["nutrition"])

	// the stored copy matches what the aggregator returned
	stored, err := service.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, stats.TotalScore, stored.TotalScore)
	require.Equal(t, stats.AverageScore, stored.AverageScore)
}

func TestGetUserStatsUnknownUser(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Err: errors.New("model offline")})
	service := invokeStats(t, injector)

	_, err := service.GetUserStats(context.Background(), "nobody")
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestFormatStats(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Err: errors.New("model offline")})
	service := invokeStats(t, injector)
	ctx := context.Background()

	_, err := service.UpdateUserStats(ctx, finishedSession("alice", 4, answerRecords(models.CategoryBodyParts, 4, 5)))
	require.NoError(t, err)

	message, err := service.FormatStats(ctx, "alice")
	require.NoError(t, err)
	require.Contains(t, message, "Your Game Statistics:")
	require.Contains(t, message, "Total Games Played: 1")
	require.Contains(t, message, "Total Score: 4")
	require.Contains(t, message, "Average Score: 4.0")
	require.Contains(t, message, "body_parts: 4/5 (80.0%)")
	require.Contains(t, message, "Last Played:")
}

func TestFormatStatsNoGames(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Err: errors.New("model offline")})
	service := invokeStats(t, injector)

	message, err := service.FormatStats(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, "No game statistics found. Play a game to get started!", message)
}
