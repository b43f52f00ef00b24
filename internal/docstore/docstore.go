// Package docstore is the key-value document layer for live state: game
// sessions, lifetime stats, conversations and health metrics. Documents are
// msgpack-encoded and carry an explicit schema version so format changes at
// the storage boundary stay visible.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound reports a missing document. Callers translate it into their
// own "no session" / "no stats yet" conditions.
var ErrNotFound = errors.New("document not found")

func dbKeyUserGameSession(userID string) string {
	return fmt.Sprintf("game_session:%s", strings.ToLower(userID))
}

func dbKeyGameSessionByID(sessionID string) string {
	return fmt.Sprintf("game_session:id:%s", sessionID)
}

func dbKeyGameStats(userID string) string {
	return fmt.Sprintf("game_stats:%s", strings.ToLower(userID))
}

func dbKeyConversation(conversationID string) string {
	return fmt.Sprintf("conversation:%s", conversationID)
}

func dbKeyHealthMetrics(userID string) string {
	return fmt.Sprintf("health_metrics:%s", strings.ToLower(userID))
}

func setDocument(ctx context.Context, cmd redis.Cmdable, key string, v any) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, key, b, 0).Err()
}

func getDocument(ctx context.Context, cmd redis.Cmdable, key string, v any) error {
	b, err := cmd.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	return msgpack.Unmarshal(b, v)
}
