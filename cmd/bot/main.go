package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"dermadect/internal/interfaces"
	"dermadect/internal/llm"
	"dermadect/internal/models"
	"dermadect/internal/pkg/caching"
	"dermadect/internal/pkg/limiter"
	"dermadect/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
	tele "gopkg.in/telebot.v3"
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
		Name: "bot-telegram",
		Commands: []*cli.Command{
			commandBot(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandBot() *cli.Command {
	return &cli.Command{
		Name:   "server",
		Action: action,
	}
}

func action(c *cli.Context) error {
	vs, err := env.EnvsRequired(
		"BOT_TOKEN",
		"DB_DSN",
		"REDIS_DB",
		"GEMINI_API_KEY",
	)
	if err != nil {
		return err
	}

	container := newContainer(vs)

	serviceAgent, err := do.Invoke[*services.ServiceAgent](container)
	if err != nil {
		return err
	}
	serviceChat, err := do.Invoke[*services.ServiceChat](container)
	if err != nil {
		return err
	}
	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return err
	}
	bot, err := do.Invoke[*services.Bot](container)
	if err != nil {
		return err
	}

	pref := tele.Settings{
		Token:  vs["BOT_TOKEN"],
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return err
	}

	b.Handle("/start", func(c tele.Context) error {
		sender := c.Sender()
		_, err := serviceUser.FindOrCreateUser(context.Background(), &models.UserFromAuth{
			ID:           sender.ID,
			Username:     sender.Username,
			FirstName:    sender.FirstName,
			LastName:     sender.LastName,
			LanguageCode: sender.LanguageCode,
			IsBot:        sender.IsBot,
		}, c.Chat().ID)
		if err != nil {
			log.Printf("unable to register user %d: %v", sender.ID, err)
		}
		return bot.SendWelcomeMsg(c.Chat().ID)
	})

	b.Handle("/help", func(c tele.Context) error {
		response, err := serviceAgent.ProcessMessage(context.Background(), fmt.Sprintf("%d", c.Sender().ID), "help")
		if err != nil {
			return c.Send("Something went wrong. Please try again.")
		}
		return c.Send(response.Response)
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		ctx := context.Background()
		userID := fmt.Sprintf("%d", c.Sender().ID)
		text := c.Text()

		if isGameMessage(ctx, serviceAgent, userID, text) {
			response, err := serviceAgent.ProcessMessage(ctx, userID, text)
			if err != nil {
				log.Printf("game message from %s failed: %v", userID, err)
				return c.Send("Something went wrong. Please try again.")
			}
			return c.Send(response.Response)
		}

		response, err := serviceChat.ProcessMessage(ctx, &models.ChatRequest{
			UserID:  userID,
			Message: text,
		})
		if err != nil {
			log.Printf("chat message from %s failed: %v", userID, err)
			return c.Send("Something went wrong. Please try again.")
		}
		return c.Send(response.Response)
	})

	log.Println("bot started")
	b.Start()
	return nil
}

// isGameMessage sends known commands and mid-game answers to the quiz agent.
// Everything else goes to the healthcare chat.
func isGameMessage(ctx context.Context, serviceAgent *services.ServiceAgent, userID string, text string) bool {
	command := strings.ToLower(strings.TrimSpace(text))
	for _, known := range services.AvailableCommands {
		if command == known {
			return true
		}
	}

	return serviceAgent.HasActiveSession(ctx, userID)
}

func newContainer(vs map[string]string) *do.Injector {
	injector := do.New()
	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(os.Getenv("DB_DSN")),
			pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
		))

		return bun.NewDB(sqldb, pgdialect.New()), nil
	})

	do.ProvideNamed(injector, "redis-db", func(i *do.Injector) (redis.UniversalClient, error) {
		return db.InitRedis(&db.RedisConfig{
			URL: os.Getenv("REDIS_DB"),
		})
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, true)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		if err != nil {
			return nil, err
		}

		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		return redsync.New(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (llm.Provider, error) {
		return llm.NewGemini(context.Background(), vs["GEMINI_API_KEY"], os.Getenv("GEMINI_MODEL"))
	})

	do.Provide(injector, func(i *do.Injector) (*services.Bot, error) {
		return services.NewBot(vs["BOT_TOKEN"])
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceGame, error) {
		return services.NewServiceGame(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceAgent, error) {
		return services.NewServiceAgent(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceChat, error) {
		return services.NewServiceChat(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceStats, error) {
		return services.NewServiceStats(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceQuestion, error) {
		return services.NewServiceQuestion(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(injector)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceUser, error) {
		return services.NewServiceUser(injector)
	})

	return injector
}
