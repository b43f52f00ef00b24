package handler

import (
	"errors"

	"dermadect/internal/models"
	"dermadect/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupChat struct {
	container *do.Injector
}

func (gr *groupChat) Chat(c echo.Context) error {
	serviceChat, err := do.Invoke[*services.ServiceChat](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}
	if req.UserID == "" {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("user_id is required"), errorx.Validation))
	}

	ctx := c.Request().Context()
	response, err := serviceChat.ProcessMessage(ctx, &req)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, response, nil)
}

func (gr *groupChat) HealthTip(c echo.Context) error {
	serviceChat, err := do.Invoke[*services.ServiceChat](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	response, err := serviceChat.HealthTip(ctx, c.QueryParam("topic"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, response, nil)
}

func (gr *groupChat) HealthJoke(c echo.Context) error {
	serviceChat, err := do.Invoke[*services.ServiceChat](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	response, err := serviceChat.HealthJoke(ctx, c.QueryParam("topic"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, response, nil)
}

func (gr *groupChat) SaveHealthMetrics(c echo.Context) error {
	serviceChat, err := do.Invoke[*services.ServiceChat](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	var metrics []models.HealthMetric
	if err := c.Bind(&metrics); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	ctx := c.Request().Context()
	if err := serviceChat.SaveHealthMetrics(ctx, c.Param("user_id"), metrics); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, true, nil)
}

func (gr *groupChat) GetHealthMetrics(c echo.Context) error {
	serviceChat, err := do.Invoke[*services.ServiceChat](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	metrics, err := serviceChat.GetHealthMetrics(ctx, c.Param("user_id"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, metrics, nil)
}
