package datastore

import (
	"context"

	"dermadect/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGameSession(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.GameSession)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GameSession)(nil)).Index("index_game_session_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func CreateTableAnswerRecord(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.AnswerRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

// ArchiveGameSession copies a completed session into postgres for the
// historical record. Answer rows that fail individually are skipped so one
// bad row cannot lose the whole archive.
func ArchiveGameSession(ctx context.Context, db *bun.DB, session *models.GameSession) error {
	_, err := db.NewInsert().Model(session).On("CONFLICT (session_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("score = EXCLUDED.score").
		Set("current_question_index = EXCLUDED.current_question_index").
		Set("end_time = EXCLUDED.end_time").
		Exec(ctx)
	if err != nil {
		return err
	}

	for index, record := range session.Answers {
		record.SessionID = session.SessionID
		record.Index = index
		_, err = db.NewInsert().Model(&record).On("CONFLICT (session_id, index) DO NOTHING").Exec(ctx)
		if err != nil {
			continue
		}
	}

	return nil
}

func GetArchivedSessions(ctx context.Context, db *bun.DB, userID string) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := db.NewSelect().Model(&sessions).Where("user_id = ?", userID).Order("start_time DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
