package handler

import (
	"net/http"

	"dermadect/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "Welcome to Dermadect API")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		bot, err := do.Invoke[*services.Bot](cfg.Container)
		if err != nil {
			return nil, err
		}
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)

		routesAPIv1Me := routesAPIv1.Group("/user/me")
		routesAPIv1Me.Use(AuthnInitData(bot))
		{
			u := groupUser{cfg.Container}
			routesAPIv1Me.GET("", u.Me)
		}

		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.

		ch := groupChat{cfg.Container}
		routesAPIv1.POST("/chat", ch.Chat)
		routesAPIv1.GET("/health-tip", ch.HealthTip)
		routesAPIv1.GET("/health-joke", ch.HealthJoke)
		routesAPIv1.POST("/health-metrics/:user_id", ch.SaveHealthMetrics)
		routesAPIv1.GET("/health-metrics/:user_id", ch.GetHealthMetrics)

		routesAPIv1Game := routesAPIv1.Group("/game")
		{
			routesAPIv1Game.Use(middlewareGameRateLimit(cfg.Container))
			g := groupGame{cfg.Container}

			routesAPIv1Game.POST("/:user_id", g.Play)
			routesAPIv1Game.GET("/:user_id/session", g.CurrentSession)
			routesAPIv1Game.GET("/:user_id/stats", g.Stats)
		}
	}

	return r, nil
}
