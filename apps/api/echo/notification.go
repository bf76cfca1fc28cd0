package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, deps ServerDeps) {
	api := notificationApi{svc: deps.Notifications}

	g.GET("/users/:id/notifications", api.page)
	g.GET("/users/:id/notifications/all", api.list)
	g.GET("/users/:id/notifications/unread", api.unreadCount)

	ng := g.Group("/notifications")
	ng.POST("", api.create, adminMiddleware())
	ng.POST("/:id/read", api.markRead)
}

// Handlers

func (api *notificationApi) page(ctx echo.Context) error {
	p := new(Paging)
	if err := p.Bind(ctx); err != nil {
		return err
	}
	page, err := api.svc.Page(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), p.Cursor, p.Size)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *notificationApi) list(ctx echo.Context) error {
	notifs, err := api.svc.List(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) unreadCount(ctx echo.Context) error {
	n, err := api.svc.UnreadCount(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"unread": n})
}

func (api *notificationApi) create(ctx echo.Context) error {
	data := new(notification.NewNotification)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	n, err := api.svc.Create(ctx.Request().Context(), getContextSession(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	n, err := api.svc.MarkRead(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, n)
}
