package datastore

import (
	"context"
	"time"

	"dermadect/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	return err
}

func FindUserByID(ctx context.Context, db *bun.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := db.NewInsert().Model(user).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func EditUser(ctx context.Context, db *bun.DB, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()
	_, err := db.NewUpdate().Model(user).WherePK().Exec(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsersWithChat returns users reachable by the bot, for scheduled
// broadcasts.
func ListUsersWithChat(ctx context.Context, db *bun.DB) ([]*models.User, error) {
	var users []*models.User
	err := db.NewSelect().Model(&users).Where("chat_id != 0").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}
