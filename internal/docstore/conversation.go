package docstore

import (
	"context"
	"errors"

	"dermadect/internal/models"

	"github.com/redis/go-redis/v9"
)

func SaveConversation(ctx context.Context, cmd redis.Cmdable, conversation *models.Conversation) (*models.Conversation, error) {
	if conversation.ID == "" || conversation.UserID == "" {
		return nil, errors.New("invalid conversation")
	}

	if conversation.SchemaVersion == 0 {
		conversation.SchemaVersion = models.ConversationSchemaVersion
	}

	if err := setDocument(ctx, cmd, dbKeyConversation(conversation.ID), conversation); err != nil {
		return nil, err
	}

	return conversation, nil
}

func GetConversation(ctx context.Context, cmd redis.Cmdable, conversationID string) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := getDocument(ctx, cmd, dbKeyConversation(conversationID), &conversation); err != nil {
		return nil, err
	}

	return &conversation, nil
}
