package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"dermadect/internal/datastore"
	"dermadect/internal/models"
	"dermadect/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "seed",
		Commands: []*cli.Command{
			commandMigrate(),
			commandSeed(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigrate() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create database tables",
		Action: func(c *cli.Context) error {
			postgresDB, err := getDb()
			if err != nil {
				return err
			}

			ctx := context.Background()
			steps := []func(context.Context, *bun.DB) error{
				datastore.CreateTableUser,
				datastore.CreateTableConfig,
				datastore.CreateTableQuestion,
				datastore.CreateTableGameSession,
				datastore.CreateTableAnswerRecord,
			}
			for _, step := range steps {
				if err := step(ctx, postgresDB); err != nil {
					return err
				}
			}

			log.Println("tables created")
			return nil
		},
	}
}

func commandSeed() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert the built-in question set and default config",
		Action: func(c *cli.Context) error {
			postgresDB, err := getDb()
			if err != nil {
				return err
			}

			ctx := context.Background()
			if err := datastore.InsertQuestions(ctx, postgresDB, services.FallbackQuestions()); err != nil {
				return err
			}

			configs := []models.Config{
				{Key: services.CONFIG_DEFAULT_NUM_QUESTIONS, Value: "5"},
				{Key: services.CONFIG_QUESTION_CATEGORY, Value: models.CategoryBodyParts},
				{Key: services.CONFIG_CRONJOB_TIME_HEALTH_TIP, Value: "0 9 * * *"},
			}
			for _, config := range configs {
				if err := datastore.InsertConfig(ctx, postgresDB, config); err != nil {
					return err
				}
			}

			count, err := datastore.CountQuestions(ctx, postgresDB, models.CategoryBodyParts)
			if err != nil {
				return err
			}

			log.Printf("seeded, question bank holds %d questions", count)
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	if _, err := env.EnvsRequired("DB_DSN"); err != nil {
		return nil, err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
