package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/comment"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/paging"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/rating"
)

type catalogApi struct {
	svc      *catalog.Service
	ratings  *rating.Service
	comments *comment.Service
	pager    *paging.Manager
}

func registerCatalogAPI(g *echo.Group, deps ServerDeps) {
	api := catalogApi{
		svc:      deps.Catalog,
		ratings:  deps.Ratings,
		comments: deps.Comments,
		pager:    deps.Pager,
	}

	cg := g.Group("/catalog")
	cg.GET("/curriculum", api.curriculum)
	cg.GET("/categories", api.categories)
	cg.GET("/categories/:category/groups", api.groups)
	cg.GET("/tree", api.tree)
	cg.GET("/pages", api.page)
	cg.GET("/more", api.loadMore)
	cg.DELETE("/more", api.resetMore)

	ig := cg.Group("/items")
	ig.GET("", api.query)
	ig.POST("", api.create, adminMiddleware())

	// detail endpoints
	ig.GET("/:id", api.retrieve)
	ig.PUT("/:id", api.update, adminMiddleware())
	ig.DELETE("/:id", api.destroy, adminMiddleware())
	ig.GET("/:id/votes", api.votes)
	ig.POST("/:id/votes", api.vote)
	ig.GET("/:id/comments", api.listComments)
	ig.POST("/:id/comments", api.postComment)
}

// Handlers

func (api *catalogApi) curriculum(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, catalog.GetCurriculum())
}

func (api *catalogApi) categories(ctx echo.Context) error {
	cats, err := api.svc.Categories(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *catalogApi) groups(ctx echo.Context) error {
	idx, err := api.svc.Index(ctx.Request().Context())
	if err != nil {
		return err
	}
	groups := idx.Group(ctx.Param("category"))
	if groups == nil {
		groups = []catalog.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *catalogApi) tree(ctx echo.Context) error {
	tree, err := api.svc.Tree(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *catalogApi) query(ctx echo.Context) error {
	f := new(catalog.Filter)
	if err := ctx.Bind(f); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	items, err := api.svc.Query(ctx.Request().Context(), *f)
	if err != nil {
		return err
	}
	if items == nil {
		items = []catalog.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *catalogApi) retrieve(ctx echo.Context) error {
	it, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *catalogApi) create(ctx echo.Context) error {
	data := new(catalog.NewItem)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	it, err := api.svc.Create(ctx.Request().Context(), getContextSession(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, it)
}

func (api *catalogApi) update(ctx echo.Context) error {
	data := new(catalog.NewItem)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	it, err := api.svc.Update(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *catalogApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// page returns the first page of the filter, or the page following `cursor`.
// A cursor carries its own filter.
func (api *catalogApi) page(ctx echo.Context) error {
	p := new(Paging)
	if err := p.Bind(ctx); err != nil {
		return err
	}

	var page paging.Page
	if p.Cursor != "" {
		var err error
		if page, err = api.pager.NextPage(ctx.Request().Context(), catalog.PageQuery, p.Cursor, p.Size); err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, page)
	}

	f := new(PageFilter)
	if err := f.Bind(ctx); err != nil {
		return err
	}
	page, err := api.pager.FirstPage(ctx.Request().Context(), catalog.PageShape(f.catalog()), p.Size)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

// loadMore continues the caller's own listing of the filter.
func (api *catalogApi) loadMore(ctx echo.Context) error {
	p := new(Paging)
	if err := p.Bind(ctx); err != nil {
		return err
	}
	f := new(PageFilter)
	if err := f.Bind(ctx); err != nil {
		return err
	}
	sess := getContextSession(ctx)
	page, err := api.pager.LoadMore(ctx.Request().Context(), sess.UserID, catalog.PageShape(f.catalog()), p.Size)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *catalogApi) resetMore(ctx echo.Context) error {
	f := new(PageFilter)
	if err := f.Bind(ctx); err != nil {
		return err
	}
	sess := getContextSession(ctx)
	if err := api.pager.Reset(ctx.Request().Context(), sess.UserID, catalog.PageShape(f.catalog())); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) votes(ctx echo.Context) error {
	id := ctx.Param("id")
	summary, err := api.ratings.Summary(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	resp := VotesResponse{Summary: summary}
	vote, ok, err := api.ratings.UserVote(ctx.Request().Context(), id, getContextSession(ctx).UserID)
	if err != nil {
		return err
	}
	if ok {
		resp.Vote = &vote.Rating
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *catalogApi) vote(ctx echo.Context) error {
	data := new(VoteRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	summary, err := api.ratings.CastVote(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), data.Rating)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, VotesResponse{Summary: summary, Vote: &data.Rating})
}

func (api *catalogApi) listComments(ctx echo.Context) error {
	comments, err := api.comments.List(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if comments == nil {
		comments = []comment.Comment{}
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *catalogApi) postComment(ctx echo.Context) error {
	data := new(comment.NewComment)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	c, err := api.comments.Post(ctx.Request().Context(), getContextSession(ctx), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

type (
	VoteRequest struct {
		Rating int `json:"rating"`
	}

	VotesResponse struct {
		Summary rating.Summary `json:"summary"`
		Vote    *int           `json:"vote"` // the caller's rating, if any
	}
)
