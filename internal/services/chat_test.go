package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dermadect/internal/docstore"
	"dermadect/internal/llm"
	"dermadect/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/stretchr/testify/require"
)

func TestChatGeneralQuestion(t *testing.T) {
	mock := &llm.Mock{Response: "Drink plenty of water. This is general information, not medical advice."}
	injector := newTestContainer(t, mock)
	service := invokeChat(t, injector)
	ctx := context.Background()

	response, err := service.ProcessMessage(ctx, &models.ChatRequest{
		UserID:  "alice",
		Message: "How much water should I drink per day?",
	})
	require.NoError(t, err)
	require.Equal(t, mock.Response, response.Response)
	require.NotEmpty(t, response.ConversationID)
	require.False(t, response.RequiresFollowup)

	// the response echoes the conversation so far
	require.Len(t, response.Context, 2)
	require.Equal(t, models.RoleAssistant, response.Context[1].Role)

	require.Len(t, mock.Calls, 1)
	require.Equal(t, generalHealthPrompt, mock.Calls[0].System)

	// both turns were persisted under the returned conversation id
	client, err := do.InvokeNamed[redis.UniversalClient](injector, "redis-db")
	require.NoError(t, err)
	conversation, err := docstore.GetConversation(ctx, client, response.ConversationID)
	require.NoError(t, err)
	require.Len(t, conversation.Messages, 2)
	require.Equal(t, models.RoleUser, conversation.Messages[0].Role)
	require.Equal(t, models.RoleAssistant, conversation.Messages[1].Role)
}

func TestChatContinuesConversation(t *testing.T) {
	mock := &llm.Mock{Response: "Aim for seven to nine hours."}
	injector := newTestContainer(t, mock)
	service := invokeChat(t, injector)
	ctx := context.Background()

	first, err := service.ProcessMessage(ctx, &models.ChatRequest{UserID: "alice", Message: "How much sleep do adults need?"})
	require.NoError(t, err)

	second, err := service.ProcessMessage(ctx, &models.ChatRequest{
		UserID:         "alice",
		Message:        "And for teenagers?",
		ConversationID: first.ConversationID,
	})
	require.NoError(t, err)
	require.Equal(t, first.ConversationID, second.ConversationID)

	// the second completion saw the full history
	require.Len(t, mock.Calls, 2)
	require.Len(t, mock.Calls[1].Messages, 3)
}

func TestChatHistoryLimitBoundsModelContext(t *testing.T) {
	mock := &llm.Mock{Response: "Noted."}
	injector := newTestContainer(t, mock)
	service := invokeChat(t, injector)
	setTestConfig(t, injector, CONFIG_CHAT_HISTORY_LIMIT, 3)
	ctx := context.Background()

	first, err := service.ProcessMessage(ctx, &models.ChatRequest{UserID: "alice", Message: "Tell me about vitamin D"})
	require.NoError(t, err)

	for _, message := range []string{"And vitamin C?", "And zinc?"} {
		_, err = service.ProcessMessage(ctx, &models.ChatRequest{
			UserID:         "alice",
			Message:        message,
			ConversationID: first.ConversationID,
		})
		require.NoError(t, err)
	}

	// the third turn has five stored messages but only the last three are sent
	require.Len(t, mock.Calls, 3)
	require.Len(t, mock.Calls[2].Messages, 3)
	require.Equal(t, "And zinc?", mock.Calls[2].Messages[2].Content)
}

func TestChatFirstSymptomMessageAsksFollowup(t *testing.T) {
	mock := &llm.Mock{Response: "should not be called"}
	injector := newTestContainer(t, mock)
	service := invokeChat(t, injector)

	response, err := service.ProcessMessage(context.Background(), &models.ChatRequest{
		UserID:  "alice",
		Message: "I have a headache and some fever",
	})
	require.NoError(t, err)
	require.True(t, response.RequiresFollowup)
	require.Equal(t, symptomFollowupQuestion, response.FollowupQuestion)
	require.Equal(t, symptomFollowupQuestion, response.Response)
	require.Empty(t, mock.Calls)
}

func TestChatSecondSymptomMessageGetsAnalysis(t *testing.T) {
	mock := &llm.Mock{Response: "**Symptom Analysis** ..."}
	injector := newTestContainer(t, mock)
	service := invokeChat(t, injector)
	ctx := context.Background()

	first, err := service.ProcessMessage(ctx, &models.ChatRequest{UserID: "alice", Message: "I have a headache"})
	require.NoError(t, err)
	require.True(t, first.RequiresFollowup)

	second, err := service.ProcessMessage(ctx, &models.ChatRequest{
		UserID:         "alice",
		Message:        "The headache started two days ago, severity 6, behind the eyes",
		ConversationID: first.ConversationID,
	})
	require.NoError(t, err)
	require.False(t, second.RequiresFollowup)
	require.Equal(t, mock.Response, second.Response)

	require.Len(t, mock.Calls, 1)
	require.Equal(t, symptomAnalysisPrompt, mock.Calls[0].System)
}

func TestChatTrackingMessageUsesTrackingPrompt(t *testing.T) {
	mock := &llm.Mock{Response: "Recorded."}
	injector := newTestContainer(t, mock)
	service := invokeChat(t, injector)

	_, err := service.ProcessMessage(context.Background(), &models.ChatRequest{
		UserID:  "alice",
		Message: "Please track my weight at 72kg",
	})
	require.NoError(t, err)
	require.Len(t, mock.Calls, 1)
	require.Equal(t, healthTrackingPrompt, mock.Calls[0].System)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Response: "unused"})
	service := invokeChat(t, injector)

	_, err := service.ProcessMessage(context.Background(), &models.ChatRequest{UserID: "alice", Message: "   "})
	require.Error(t, err)
}

func TestHealthTip(t *testing.T) {
	mock := &llm.Mock{Response: "**Health Tip** stretch every hour"}
	injector := newTestContainer(t, mock)
	service := invokeChat(t, injector)

	response, err := service.HealthTip(context.Background(), "posture")
	require.NoError(t, err)
	require.Equal(t, mock.Response, response.Response)

	require.Len(t, mock.Calls, 1)
	require.Equal(t, healthTipPrompt, mock.Calls[0].System)
	require.Equal(t, "Generate a health tip about posture", mock.Calls[0].Messages[0].Content)
}

func TestHealthTipApologizesWhenModelFails(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Err: errors.New("model offline")})
	service := invokeChat(t, injector)

	response, err := service.HealthTip(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "I couldn't generate a health tip right now. Please try again.", response.Response)
}

func TestHealthJokeDefaultsTopic(t *testing.T) {
	mock := &llm.Mock{Response: "Joke: ... Punchline: ..."}
	injector := newTestContainer(t, mock)
	service := invokeChat(t, injector)

	_, err := service.HealthJoke(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, mock.Calls, 1)
	require.Equal(t, healthJokePrompt, mock.Calls[0].System)
	require.Equal(t, "Generate a health joke about general health", mock.Calls[0].Messages[0].Content)
}

func TestHealthMetricsRoundtrip(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Response: "unused"})
	service := invokeChat(t, injector)
	ctx := context.Background()

	stamped := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	err := service.SaveHealthMetrics(ctx, "alice", []models.HealthMetric{
		{Name: "weight", Value: 72.5, Unit: "kg", Timestamp: stamped},
		{Name: "heart_rate", Value: 61, Unit: "bpm"},
	})
	require.NoError(t, err)

	metrics, err := service.GetHealthMetrics(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	require.Equal(t, "weight", metrics[0].Name)
	require.True(t, stamped.Equal(metrics[0].Timestamp))
	// the missing timestamp was stamped on save
	require.False(t, metrics[1].Timestamp.IsZero())
}

func TestGetHealthMetricsUnknownUser(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Response: "unused"})
	service := invokeChat(t, injector)

	metrics, err := service.GetHealthMetrics(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, metrics)
}
