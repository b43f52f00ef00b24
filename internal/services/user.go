package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"dermadect/internal/datastore"
	"dermadect/internal/models"
	"dermadect/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

const MessageNewUser = `👋 Welcome to Dermadect!

Ask me anything about your health, track your metrics, or type "start game" to test your anatomy knowledge. 🧠`

type ServiceUser struct {
	container  *do.Injector
	postgresDB *bun.DB
	cache      caching.Cache

	bot           *Bot
	serviceConfig *ServiceConfig
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	bot, err := do.Invoke[*Bot](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, postgresDB, cache, bot, serviceConfig}, nil
}

func (service *ServiceUser) FindUser(ctx context.Context, userID string) (*models.User, error) {
	callback := func() (*models.User, error) {
		user, err := datastore.FindUserByID(ctx, service.postgresDB, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, errorx.Wrap(ErrUserNotFound, errorx.NotExist)
			}
			return nil, errorx.Wrap(err, errorx.Service)
		}
		return user, nil
	}

	return caching.UseCache(ctx, service.cache, DBKeyUser(userID), CACHE_TTL_5_MINS, callback)
}

// FindOrCreateUser resolves the authenticated identity to a stored user,
// creating and greeting it on first contact.
func (service *ServiceUser) FindOrCreateUser(ctx context.Context, auth *models.UserFromAuth, chatID int64) (*models.User, error) {
	userID := fmt.Sprintf("%d", auth.ID)

	user, err := service.FindUser(ctx, userID)
	if err == nil {
		if chatID != 0 && user.ChatID != chatID {
			user.ChatID = chatID
			return service.EditUser(ctx, user)
		}
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		ID:           userID,
		Username:     auth.Username,
		FirstName:    auth.FirstName,
		LastName:     auth.LastName,
		LanguageCode: auth.LanguageCode,
		ChatID:       chatID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	user, err = datastore.CreateUser(ctx, service.postgresDB, user)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	greeting, _ := service.serviceConfig.GetStringConfig(ctx, CONFIG_TEXT_NEW_USER, MessageNewUser)
	if err := service.bot.SendMsg(user, greeting); err != nil {
		log.Printf("unable to greet user %s: %v", user.ID, err)
	}

	return user, nil
}

func (service *ServiceUser) EditUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()
	user, err := datastore.EditUser(ctx, service.postgresDB, user)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if err := service.cache.Delete(ctx, DBKeyUser(user.ID)); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return user, nil
}
