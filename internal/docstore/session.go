package docstore

import (
	"context"
	"errors"
	"fmt"

	"dermadect/internal/models"

	"github.com/redis/go-redis/v9"
)

// SaveGameSession writes the session under both its per-user current-session
// key and its id key. The per-user key is what makes the "at most one live
// session per user" lookup a single GET.
func SaveGameSession(ctx context.Context, cmd redis.Cmdable, session *models.GameSession) (*models.GameSession, error) {
	if session.SessionID == "" || session.UserID == "" {
		return nil, errors.New("invalid session")
	}

	if session.SchemaVersion == 0 {
		session.SchemaVersion = models.GameSessionSchemaVersion
	}

	if err := setDocument(ctx, cmd, dbKeyUserGameSession(session.UserID), session); err != nil {
		return nil, err
	}

	if err := setDocument(ctx, cmd, dbKeyGameSessionByID(session.SessionID), session); err != nil {
		return nil, err
	}

	return session, nil
}

// GetCurrentGameSession returns the user's most recent session, active or
// completed. ErrNotFound when the user never played.
func GetCurrentGameSession(ctx context.Context, cmd redis.Cmdable, userID string) (*models.GameSession, error) {
	var session models.GameSession
	if err := getDocument(ctx, cmd, dbKeyUserGameSession(userID), &session); err != nil {
		return nil, err
	}

	if err := checkSessionVersion(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

// GetActiveGameSession implements the status == active query: the current
// session is returned only when it is still active.
func GetActiveGameSession(ctx context.Context, cmd redis.Cmdable, userID string) (*models.GameSession, error) {
	session, err := GetCurrentGameSession(ctx, cmd, userID)
	if err != nil {
		return nil, err
	}

	if session.Status != models.SessionActive {
		return nil, ErrNotFound
	}

	return session, nil
}

func GetGameSessionByID(ctx context.Context, cmd redis.Cmdable, sessionID string) (*models.GameSession, error) {
	var session models.GameSession
	if err := getDocument(ctx, cmd, dbKeyGameSessionByID(sessionID), &session); err != nil {
		return nil, err
	}

	if err := checkSessionVersion(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

func checkSessionVersion(session *models.GameSession) error {
	if session.SchemaVersion > models.GameSessionSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d", session.SchemaVersion)
	}
	return nil
}
