package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"dermadect/internal/datastore"
	"dermadect/internal/llm"
	"dermadect/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

const defaultTipSchedule = "0 9 * * *"

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
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob() *cli.Command {
	return &cli.Command{
		Name: "cron",
		Action: func(c *cli.Context) error {
			vs, err := env.EnvsRequired(
				"BOT_TOKEN",
				"DB_DSN",
				"GEMINI_API_KEY",
			)
			if err != nil {
				return err
			}

			postgresDB := getDb()

			bot, err := services.NewBot(vs["BOT_TOKEN"])
			if err != nil {
				return err
			}

			provider, err := llm.NewGemini(context.Background(), vs["GEMINI_API_KEY"], os.Getenv("GEMINI_MODEL"))
			if err != nil {
				return err
			}

			schedule := defaultTipSchedule
			if config, err := datastore.GetConfigByKey(context.Background(), postgresDB, services.CONFIG_CRONJOB_TIME_HEALTH_TIP); err == nil {
				schedule = config.Value
			}

			job := &healthTipJob{postgresDB, bot, provider}

			cronRunner := cron.New()
			if _, err := cronRunner.AddFunc(schedule, job.run); err != nil {
				return err
			}

			log.Printf("health tip broadcast scheduled at %q", schedule)
			cronRunner.Run()
			return nil
		},
	}
}

func getDb() *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New())
}
