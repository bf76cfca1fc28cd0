package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/recommend"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
)

type userApi struct {
	svc       *user.Service
	recommend *recommend.Service
}

func registerUserAPI(g *echo.Group, deps ServerDeps) {
	api := userApi{
		svc:       deps.Users,
		recommend: deps.Recommend,
	}

	ug := g.Group("/users")
	ug.GET("", api.query, adminMiddleware())
	ug.GET("/me", api.me)
	ug.GET("/leaderboard", api.leaderboard)

	// detail endpoints
	dg := ug.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.PUT("/role", api.setRole, adminMiddleware())
	dg.PUT("/preferences", api.setPreferences)
	dg.POST("/completions", api.markCompleted)
	dg.GET("/completions/:itemId", api.isCompleted)
	dg.GET("/recommendations", api.recommendations)
}

// Handlers

func (api *userApi) me(ctx echo.Context) error {
	sess := getContextSession(ctx)
	p, err := api.svc.Get(ctx.Request().Context(), sess, sess.UserID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	profiles, err := api.svc.Query(ctx.Request().Context(), getContextSession(ctx), *filter)
	if err != nil {
		return err
	}
	if profiles == nil {
		profiles = []user.Profile{}
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *userApi) leaderboard(ctx echo.Context) error {
	limit, err := intQueryParam(ctx, limitParam)
	if err != nil {
		return err
	}
	board, err := api.svc.Leaderboard(ctx.Request().Context(), limit)
	if err != nil {
		return err
	}
	if board == nil {
		board = []user.LeaderboardEntry{}
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *userApi) update(ctx echo.Context) error {
	data := new(user.UpdateProfile)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	p, err := api.svc.UpdateProfile(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *userApi) setRole(ctx echo.Context) error {
	data := new(RoleRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	p, err := api.svc.SetRole(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), data.Role)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *userApi) setPreferences(ctx echo.Context) error {
	data := new(PreferencesRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	p, err := api.svc.SetPreferences(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), data.Categories)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *userApi) markCompleted(ctx echo.Context) error {
	data := new(CompletionRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	p, err := api.svc.MarkCompleted(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), data.ItemID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *userApi) isCompleted(ctx echo.Context) error {
	done, err := api.svc.IsCompleted(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), ctx.Param("itemId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"completed": done})
}

func (api *userApi) recommendations(ctx echo.Context) error {
	limit, err := intQueryParam(ctx, limitParam)
	if err != nil {
		return err
	}
	items, err := api.recommend.Recommend(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), limit)
	if err != nil {
		return err
	}
	if items == nil {
		items = []catalog.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

type (
	RoleRequest struct {
		Role core.Role `json:"role"`
	}

	PreferencesRequest struct {
		Categories []string `json:"categories"`
	}

	CompletionRequest struct {
		ItemID string `json:"itemId"`
	}
)
