package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/paging"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/rating"
)

// PageQuery is the paging.Shape name of catalog pages.
const PageQuery = "catalog"

var (
	ErrNotFound      = core.NewError(core.KindNotFound, "item not found")
	errSectionChange = core.NewError(core.KindInvalidArgument, "an item cannot change section")
	errAdminOnly     = errors.Wrap(core.ErrPermissionDenied, "only admins can manage the catalog")
)

type (
	// PageFilter narrows catalog pages to the fields the store can match exactly.
	PageFilter struct {
		Section    Section
		Category   string
		Board      string
		ClassLevel int
	}

	Repository interface {
		CreateItem(ctx context.Context, it Item) (Item, error)
		// UpdateItem replaces the editable fields of the stored item with those of it.
		UpdateItem(ctx context.Context, it Item) (Item, error)
		DeleteItem(ctx context.Context, id string) error
		GetItem(ctx context.Context, id string) (Item, error)
		QueryAllItems(ctx context.Context) ([]Item, error)
		// PageItems returns up to limit items matching f strictly after `after`, newest first.
		PageItems(ctx context.Context, f PageFilter, after *docstore.Cursor, limit int) ([]Item, error)
	}

	// Service serves the catalog from an Index built lazily from the repository.
	// Writes go to the repository first; the index is then re-derived from the stored result.
	Service struct {
		repo     Repository
		validate *validator.Validate
		mutex    sync.RWMutex
		index    *Index // nil until first use
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) getIndex(ctx context.Context) (*Index, error) {
	svc.mutex.RLock()
	idx := svc.index
	svc.mutex.RUnlock()
	if idx != nil {
		return idx, nil
	}
	return svc.load(ctx)
}

func (svc *Service) load(ctx context.Context) (*Index, error) {
	items, err := svc.repo.QueryAllItems(ctx)
	if err != nil {
		return nil, err
	}
	idx := BuildIndex(items)

	svc.mutex.Lock()
	svc.index = idx
	svc.mutex.Unlock()
	return idx, nil
}

// apply swaps the index for fn(index) when the index is loaded.
func (svc *Service) apply(fn func(idx *Index) *Index) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	if svc.index != nil {
		svc.index = fn(svc.index)
	}
}

// Refresh rebuilds the index from the repository.
func (svc *Service) Refresh(ctx context.Context) error {
	_, err := svc.load(ctx)
	return err
}

func (svc *Service) Index(ctx context.Context) (*Index, error) {
	return svc.getIndex(ctx)
}

// Get returns the item from the index, falling back to the repository for items the index has not seen yet.
func (svc *Service) Get(ctx context.Context, id string) (Item, error) {
	idx, err := svc.getIndex(ctx)
	if err != nil {
		return Item{}, err
	}
	if it, ok := idx.Get(id); ok {
		return it, nil
	}
	it, err := svc.repo.GetItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	svc.apply(func(idx *Index) *Index { return idx.With(it) })
	return it, nil
}

func (svc *Service) Query(ctx context.Context, f Filter) ([]Item, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	idx, err := svc.getIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Query(f), nil
}

func (svc *Service) Categories(ctx context.Context) ([]string, error) {
	idx, err := svc.getIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Categories(), nil
}

func (svc *Service) Tree(ctx context.Context) ([]TreeNode, error) {
	idx, err := svc.getIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Tree(), nil
}

func (svc *Service) Create(ctx context.Context, sess core.Session, ni NewItem) (Item, error) {
	if !sess.IsAdmin() {
		return Item{}, errAdminOnly
	}
	if err := ni.Validate(svc.validate); err != nil {
		return Item{}, err
	}
	return svc.create(ctx, "", ni)
}

// Seed stores ni under id unless an item with that id exists. It reports whether the item was created.
func (svc *Service) Seed(ctx context.Context, id string, ni NewItem) (bool, error) {
	if err := ni.Validate(svc.validate); err != nil {
		return false, err
	}
	if _, err := svc.repo.GetItem(ctx, id); err == nil {
		return false, nil
	} else if core.KindOf(err) != core.KindNotFound {
		return false, err
	}
	if _, err := svc.create(ctx, id, ni); err != nil {
		if core.KindOf(err) == core.KindConflict {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) create(ctx context.Context, id string, ni NewItem) (Item, error) {
	now := time.Now().UTC()
	it := Item{
		ID:          id,
		Section:     ni.Section,
		Title:       ni.Title,
		Description: ni.Description,
		Category:    ni.Category,
		Board:       ni.Board,
		ClassLevel:  ni.ClassLevel,
		Subject:     ni.Subject,
		Topic:       ni.Topic,
		Transcript:  ni.Transcript,
		Body:        ni.Body(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	it, err := svc.repo.CreateItem(ctx, it)
	if err != nil {
		return Item{}, err
	}
	svc.apply(func(idx *Index) *Index { return idx.With(it) })
	return it, nil
}

// Update replaces the content of item id. The section of an item is fixed at creation.
func (svc *Service) Update(ctx context.Context, sess core.Session, id string, ni NewItem) (Item, error) {
	if !sess.IsAdmin() {
		return Item{}, errAdminOnly
	}
	orig, err := svc.repo.GetItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if ni.Section == "" {
		ni.Section = orig.Section
	}
	if err = ni.Validate(svc.validate); err != nil {
		return Item{}, err
	}
	if ni.Section != orig.Section {
		return Item{}, errSectionChange
	}

	it := orig
	it.Title = ni.Title
	it.Description = ni.Description
	it.Category = ni.Category
	it.Board = ni.Board
	it.ClassLevel = ni.ClassLevel
	it.Subject = ni.Subject
	it.Topic = ni.Topic
	it.Transcript = ni.Transcript
	it.Body = ni.Body()
	it.UpdatedAt = time.Now().UTC()

	if it, err = svc.repo.UpdateItem(ctx, it); err != nil {
		return Item{}, err
	}
	svc.apply(func(idx *Index) *Index { return idx.With(it) })
	return it, nil
}

func (svc *Service) Delete(ctx context.Context, sess core.Session, id string) error {
	if !sess.IsAdmin() {
		return errAdminOnly
	}
	if err := svc.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	svc.apply(func(idx *Index) *Index { return idx.Without(id) })
	return nil
}

// ApplyRating updates the indexed rating of an item after a vote.
func (svc *Service) ApplyRating(itemID string, s rating.Summary) {
	svc.apply(func(idx *Index) *Index { return idx.WithRating(itemID, s) })
}

// PageShape returns the paging shape of f.
func PageShape(f PageFilter) paging.Shape {
	level := ""
	if f.ClassLevel > 0 {
		level = strconv.Itoa(f.ClassLevel)
	}
	return paging.NewShape(PageQuery, map[string]string{
		"section":    string(f.Section),
		"category":   f.Category,
		"board":      f.Board,
		"classLevel": level,
	})
}

func pageFilter(shape paging.Shape) (PageFilter, error) {
	f := PageFilter{
		Section:  Section(shape.Param("section")),
		Category: shape.Param("category"),
		Board:    shape.Param("board"),
	}
	if f.Section != "" && !f.Section.Valid() {
		return f, core.NewValidationError(errors.New("invalid section"), core.FieldError{Field: "section", Error: "invalid section"})
	}
	if lvl := shape.Param("classLevel"); lvl != "" {
		n, err := strconv.Atoi(lvl)
		if err != nil || n < 1 || n > 12 {
			return f, core.NewValidationError(errors.New("invalid class level"), core.FieldError{Field: "classLevel", Error: "class level must be between 1 and 12"})
		}
		f.ClassLevel = n
	}
	return f, nil
}

// Fetch pages the stored catalog; it is the paging.Fetcher of PageQuery.
func (svc *Service) Fetch(ctx context.Context, shape paging.Shape, after *docstore.Cursor, limit int) ([]paging.Entry, error) {
	f, err := pageFilter(shape)
	if err != nil {
		return nil, err
	}
	items, err := svc.repo.PageItems(ctx, f, after, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]paging.Entry, 0, len(items))
	for _, it := range items {
		entries = append(entries, paging.Entry{Position: it.Position(), Value: it})
	}
	return entries, nil
}
