package handler

import (
	"errors"

	"dermadect/internal/docstore"
	"dermadect/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupGame struct {
	container *do.Injector
}

type gameRequest struct {
	Message string `json:"message"`
}

// Play accepts a quiz command or an answer. Available commands:
// start game, end game, show stats, help. Anything else is treated as an
// answer while a session is active.
func (gr *groupGame) Play(c echo.Context) error {
	serviceAgent, err := do.Invoke[*services.ServiceAgent](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	var req gameRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	ctx := c.Request().Context()
	response, err := serviceAgent.ProcessMessage(ctx, c.Param("user_id"), req.Message)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, response, nil)
}

func (gr *groupGame) CurrentSession(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	session, err := serviceGame.GetActiveSession(ctx, c.Param("user_id"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, session, nil)
}

func (gr *groupGame) Stats(c echo.Context) error {
	serviceStats, err := do.Invoke[*services.ServiceStats](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	stats, err := serviceStats.GetUserStats(ctx, c.Param("user_id"))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.NotExist))
		}
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, stats, nil)
}
