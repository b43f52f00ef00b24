package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrGameSessionLock = errors.New("game session locked")
var ErrSessionNotFound = errors.New("no active game session")
var ErrSessionAlreadyActive = errors.New("game session already active")
var ErrUserNotFound = errors.New("user not found")

const (
	CONFIG_TEXT_NEW_USER           = "TEXT_NEW_USER"
	CONFIG_DEFAULT_NUM_QUESTIONS   = "DEFAULT_NUM_QUESTIONS"
	CONFIG_QUESTION_CATEGORY       = "QUESTION_CATEGORY"
	CONFIG_CRONJOB_TIME_HEALTH_TIP = "CRONJOB_TIME_HEALTH_TIP"
	CONFIG_CHAT_HISTORY_LIMIT      = "CHAT_HISTORY_LIMIT"

	DEFAULT_NUM_QUESTIONS      = 5
	MAX_NUM_QUESTIONS          = 20
	DEFAULT_CHAT_HISTORY_LIMIT = 20

	CHAT_RATE_LIMIT_PER_MINUTE = 30

	CACHE_TTL_1_MIN  = 1 * time.Minute
	CACHE_TTL_5_MINS = 5 * time.Minute
)

func LockKeyUserGameSession(userID string) string {
	return fmt.Sprintf("lock:game-session:%s", userID)
}

func LockKeyUserConversation(userID string) string {
	return fmt.Sprintf("lock:conversation:%s", userID)
}

// db
func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyUser(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func RateLimitKeyChat(userID string) string {
	return fmt.Sprintf("rate:chat:%s", userID)
}
