package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dermadect/internal/interfaces"
	"dermadect/internal/models"
	"dermadect/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type ctxKey string

var ctxKeyAuthUser ctxKey = "AUTH_USER"

const gameRateLimitPerMinute = 60

type verifier interface {
	Validate(token string) (*models.UserFromAuth, error)
}

// Authn attaches the authenticated user to the request context when a valid
// bearer token is present. It never terminates the request, handlers decide
// whether an identity is required.
func Authn(v verifier) echo.MiddlewareFunc {
	return authn(v.Validate)
}

// AuthnInitData is Authn for Telegram Mini App init data tokens.
func AuthnInitData(bot *services.Bot) echo.MiddlewareFunc {
	return authn(bot.ValidateInitData)
}

func authn(validate func(token string) (*models.UserFromAuth, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			parts := strings.Split(header, "Bearer")
			if len(parts) != 2 {
				return next(c)
			}

			token := strings.TrimSpace(parts[1])
			if len(token) == 0 {
				return next(c)
			}

			user, err := validate(token)
			if err != nil {
				// although it's a client error, we don't want to leak details
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthUser, user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func ResolveValidUser(ctx context.Context, container *do.Injector) (*models.User, error) {
	userAuth, ok := ctx.Value(ctxKeyAuthUser).(*models.UserFromAuth)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](container)
	if err != nil {
		return nil, err
	}

	return serviceUser.FindOrCreateUser(ctx, userAuth, 0)
}

func middlewareGameRateLimit(container *do.Injector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Param("user_id")
			if userID == "" {
				return next(c)
			}

			limiter, err := do.Invoke[interfaces.Limiter](container)
			if err != nil {
				return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
			}

			key := fmt.Sprintf("rate:game:%s", userID)
			if err := limiter.Allow(c.Request().Context(), key, redis_rate.PerMinute(gameRateLimitPerMinute)); err != nil {
				return httpx.RestAbort(c, nil, err)
			}

			return next(c)
		}
	}
}
