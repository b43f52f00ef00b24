package datastore

import (
	"context"

	"dermadect/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableQuestion(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Question)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Question)(nil)).Index("index_question_category_difficulty").IfNotExists().Column("category", "difficulty").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertQuestions(ctx context.Context, db *bun.DB, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	_, err := db.NewInsert().Model(&questions).Exec(ctx)
	return err
}

func GetQuestionsByCategory(ctx context.Context, db *bun.DB, category string, limit int) ([]models.Question, error) {
	var questions []models.Question
	err := db.NewSelect().Model(&questions).
		Where("category = ?", category).
		Where("enabled = ?", true).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func CountQuestions(ctx context.Context, db *bun.DB, category string) (int, error) {
	return db.NewSelect().Model((*models.Question)(nil)).
		Where("category = ?", category).
		Where("enabled = ?", true).
		Count(ctx)
}
