package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
)

var (
	cursorParam = "cursor"
	sizeParam   = "size"
	limitParam  = "limit"
)

// Paging holds the `cursor` and `size` query parameters. A zero Size selects the default page size.
type Paging struct {
	Cursor string
	Size   int
}

func (p *Paging) Bind(ctx echo.Context) error {
	p.Cursor = core.CleanString(ctx.QueryParam(cursorParam))
	size, err := intQueryParam(ctx, sizeParam)
	if err != nil {
		return err
	}
	p.Size = size
	return nil
}

// PageFilter holds the catalog page filter query parameters.
type PageFilter struct {
	Section    catalog.Section `query:"section"`
	Category   string          `query:"category"`
	Board      string          `query:"board"`
	ClassLevel int             `query:"classLevel"`
}

// Bind reads the query of a GET or DELETE request.
func (pf *PageFilter) Bind(ctx echo.Context) error {
	if err := ctx.Bind(pf); err != nil {
		return err
	}
	f := catalog.Filter{Section: pf.Section, Category: pf.Category, Board: pf.Board, ClassLevel: pf.ClassLevel}
	if err := f.Validate(); err != nil {
		return err
	}
	pf.Section, pf.Category, pf.Board = f.Section, f.Category, f.Board
	return nil
}

func (pf PageFilter) catalog() catalog.PageFilter {
	return catalog.PageFilter{Section: pf.Section, Category: pf.Category, Board: pf.Board, ClassLevel: pf.ClassLevel}
}

// intQueryParam parses a non-negative integer query parameter; a missing one is 0.
func intQueryParam(ctx echo.Context, name string) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
