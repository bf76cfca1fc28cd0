package docrepos

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/rating"
)

type (
	ItemRepository struct {
		base
	}

	itemRecord struct {
		Title       string        `json:"title" validate:"required"`
		Description string        `json:"description"`
		Category    string        `json:"category" validate:"required"`
		Board       null.String   `json:"board"`
		ClassLevel  null.Int      `json:"classLevel" validate:"min=0,max=12"`
		Subject     null.String   `json:"subject"`
		Topic       null.String   `json:"topic"`
		Transcript  null.String   `json:"transcript"`
		Kind        string        `json:"kind" validate:"required,oneof=text image video"`
		Content     null.String   `json:"content"`
		ImageURL    null.String   `json:"imageUrl"`
		VideoSource null.String   `json:"videoSource" validate:"omitempty,oneof=youtube khan_academy vimeo custom"`
		VideoID     null.String   `json:"videoId"`
		VideoURL    null.String   `json:"videoUrl"`
		Votes       []rating.Vote `json:"votes" validate:"dive"`
	}
)

var _ catalog.Repository = (*ItemRepository)(nil) // interface compliance check

func nullString(s string) null.String { return null.NewString(s, s != "") }

func (repo ItemRepository) boil(it catalog.Item) itemRecord {
	rec := itemRecord{
		Title:       it.Title,
		Description: it.Description,
		Category:    it.Category,
		Board:       nullString(it.Board),
		ClassLevel:  null.NewInt(it.ClassLevel, it.ClassLevel > 0),
		Subject:     nullString(it.Subject),
		Topic:       nullString(it.Topic),
		Transcript:  nullString(it.Transcript),
		Kind:        string(it.Kind()),
		Votes:       []rating.Vote{},
	}
	switch body := it.Body.(type) {
	case catalog.TextBody:
		rec.Content = nullString(body.Content)
	case catalog.ImageBody:
		rec.ImageURL = nullString(body.ImageURL)
	case catalog.VideoBody:
		rec.VideoSource = nullString(string(body.Source))
		rec.VideoID = nullString(body.VideoID)
		rec.VideoURL = nullString(body.URL)
	}
	return rec
}

// body rebuilds the tagged body, checking the fields its variant needs.
func (rec itemRecord) body() (catalog.Body, error) {
	switch catalog.Kind(rec.Kind) {
	case catalog.KindText:
		return catalog.TextBody{Content: rec.Content.String}, nil
	case catalog.KindImage:
		if rec.ImageURL.String == "" {
			return nil, errors.New("image without url")
		}
		return catalog.ImageBody{ImageURL: rec.ImageURL.String}, nil
	case catalog.KindVideo:
		vb := catalog.VideoBody{Source: catalog.VideoSource(rec.VideoSource.String)}
		switch {
		case !vb.Source.Valid():
			return nil, errors.New("video without source")
		case vb.Source == catalog.SourceCustom:
			if vb.URL = rec.VideoURL.String; vb.URL == "" {
				return nil, errors.New("custom video without url")
			}
		default:
			if vb.VideoID = rec.VideoID.String; vb.VideoID == "" {
				return nil, errors.New("video without id")
			}
		}
		return vb, nil
	}
	return nil, errors.Errorf("unknown kind %q", rec.Kind)
}

func (repo ItemRepository) unboil(doc docstore.Document, section catalog.Section) (catalog.Item, error) {
	var rec itemRecord
	if err := repo.decode(doc, &rec); err != nil {
		return catalog.Item{}, err
	}
	body, err := rec.body()
	if err != nil {
		return catalog.Item{}, errors.Wrapf(ErrMalformedRecord, "%s: %v", doc.ID, err)
	}
	return catalog.Item{
		ID:          doc.ID,
		Section:     section,
		Title:       rec.Title,
		Description: rec.Description,
		Category:    rec.Category,
		Board:       rec.Board.String,
		ClassLevel:  rec.ClassLevel.Int,
		Subject:     rec.Subject.String,
		Topic:       rec.Topic.String,
		Transcript:  rec.Transcript.String,
		Body:        body,
		Rating:      rating.Summarize(rec.Votes),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// locate finds the section holding the item. Ids are unique across sections.
func (repo ItemRepository) locate(ctx context.Context, id string) (catalog.Section, docstore.Document, error) {
	for _, section := range catalog.AllSections {
		doc, err := repo.store.Get(ctx, section.Collection(), id)
		if err == nil {
			return section, doc, nil
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return "", docstore.Document{}, trap(err, nil, "getting item")
		}
	}
	return "", docstore.Document{}, catalog.ErrNotFound
}

func (repo ItemRepository) CreateItem(ctx context.Context, it catalog.Item) (catalog.Item, error) {
	if !it.Section.Valid() {
		return catalog.Item{}, errors.Errorf("invalid section %q", it.Section)
	}
	if it.ID != "" {
		if _, _, err := repo.locate(ctx, it.ID); err == nil {
			return catalog.Item{}, docstore.ErrConflict
		} else if !errors.Is(err, catalog.ErrNotFound) {
			return catalog.Item{}, err
		}
	}

	data, err := repo.encode(repo.boil(it))
	if err != nil {
		return catalog.Item{}, err
	}
	doc, err := repo.store.Create(ctx, it.Section.Collection(), docstore.Document{
		ID:        it.ID,
		CreatedAt: it.CreatedAt,
		Data:      data,
	})
	if err != nil {
		return catalog.Item{}, trap(err, nil, "inserting item")
	}
	return repo.unboil(doc, it.Section)
}

func (repo ItemRepository) GetItem(ctx context.Context, id string) (catalog.Item, error) {
	section, doc, err := repo.locate(ctx, id)
	if err != nil {
		return catalog.Item{}, err
	}
	return repo.unboil(doc, section)
}

func (repo ItemRepository) UpdateItem(ctx context.Context, it catalog.Item) (catalog.Item, error) {
	fields, err := repo.fields(repo.boil(it), "votes")
	if err != nil {
		return catalog.Item{}, err
	}
	doc, err := repo.store.MergeUpdate(ctx, it.Section.Collection(), it.ID, fields)
	if err != nil {
		return catalog.Item{}, trap(err, catalog.ErrNotFound, "updating item")
	}
	return repo.unboil(doc, it.Section)
}

func (repo ItemRepository) DeleteItem(ctx context.Context, id string) error {
	section, _, err := repo.locate(ctx, id)
	if err != nil {
		return err
	}
	if err = repo.store.Delete(ctx, section.Collection(), id); err != nil {
		return trap(err, catalog.ErrNotFound, "deleting item")
	}
	return nil
}

func (repo ItemRepository) query(ctx context.Context, section catalog.Section, q docstore.Query) ([]catalog.Item, error) {
	items := make([]catalog.Item, 0)
	err := repo.scan(ctx, section.Collection(), q, func(doc docstore.Document) error {
		it, err := repo.unboil(doc, section)
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (repo ItemRepository) QueryAllItems(ctx context.Context) ([]catalog.Item, error) {
	var all []catalog.Item
	for _, section := range catalog.AllSections {
		items, err := repo.query(ctx, section, docstore.Query{})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// PageItems pages one section, or both merged by creation time when f.Section is empty.
func (repo ItemRepository) PageItems(ctx context.Context, f catalog.PageFilter, after *docstore.Cursor, limit int) ([]catalog.Item, error) {
	q := docstore.Query{After: after, Limit: limit}
	if f.Category != "" {
		q.Filters = append(q.Filters, docstore.Eq("category", f.Category))
	}
	if f.Board != "" {
		q.Filters = append(q.Filters, docstore.Eq("board", f.Board))
	}
	if f.ClassLevel > 0 {
		q.Filters = append(q.Filters, docstore.Eq("classLevel", f.ClassLevel))
	}

	sections := catalog.AllSections
	if f.Section != "" {
		sections = []catalog.Section{f.Section}
	}
	var items []catalog.Item
	for _, section := range sections {
		page, err := repo.query(ctx, section, q)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}

	if len(sections) > 1 {
		sort.Slice(items, func(i, j int) bool {
			return docstore.Before(items[i].Position(), items[j].Position())
		})
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
