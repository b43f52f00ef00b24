package services

import (
	"context"
	"errors"
	"strings"

	"dermadect/internal/models"

	"github.com/samber/do"
)

// ServiceAgent routes free-form quiz messages to the right game operation.
type ServiceAgent struct {
	container *do.Injector

	serviceGame  *ServiceGame
	serviceStats *ServiceStats
}

func NewServiceAgent(container *do.Injector) (*ServiceAgent, error) {
	serviceGame, err := do.Invoke[*ServiceGame](container)
	if err != nil {
		return nil, err
	}

	serviceStats, err := do.Invoke[*ServiceStats](container)
	if err != nil {
		return nil, err
	}

	return &ServiceAgent{container, serviceGame, serviceStats}, nil
}

func (service *ServiceAgent) ProcessMessage(ctx context.Context, userID string, message string) (*models.GameResponse, error) {
	command := strings.ToLower(strings.TrimSpace(message))

	switch command {
	case "start game":
		return service.serviceGame.StartGame(ctx, userID)

	case "end game":
		response, err := service.serviceGame.EndSession(ctx, userID)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				return &models.GameResponse{
					Response:          "No active game session to end.",
					AvailableCommands: AvailableCommands,
				}, nil
			}
			return nil, err
		}
		return response, nil

	case "show stats":
		text, err := service.serviceStats.FormatStats(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &models.GameResponse{
			Response:          text,
			AvailableCommands: AvailableCommands,
		}, nil

	case "help":
		return service.helpMessage(), nil
	}

	// Anything else is an answer when a game is running.
	_, err := service.serviceGame.GetActiveSession(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return &models.GameResponse{
				Response:          "No active game session. Type 'start game' to begin or 'help' for available commands.",
				AvailableCommands: AvailableCommands,
			}, nil
		}
		return nil, err
	}

	return service.serviceGame.ProcessAnswer(ctx, userID, message)
}

// HasActiveSession reports whether the user is mid-game.
func (service *ServiceAgent) HasActiveSession(ctx context.Context, userID string) bool {
	_, err := service.serviceGame.GetActiveSession(ctx, userID)
	return err == nil
}

func (service *ServiceAgent) helpMessage() *models.GameResponse {
	message := []string{
		"Welcome to the Body Parts Quiz Game!",
		"\nAvailable commands:",
		"- start game: Begin a new quiz session",
		"- end game: End the current session",
		"- show stats: View your game statistics",
		"- help: Show this help message",
		"\nDuring the game:",
		"- Answer questions about human body parts and their functions",
		"- You can answer with either the choice number or the full answer",
		"- Your score will be tracked",
		"- You can end the game at any time",
	}

	return &models.GameResponse{
		Response:          strings.Join(message, "\n"),
		AvailableCommands: AvailableCommands,
	}
}
