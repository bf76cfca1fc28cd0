// Package comment stores the append-only discussion of catalog items.
package comment

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
)

const anonymousName = "Anonymous"

var errSignIn = errors.Wrap(core.ErrPermissionDenied, "sign in to comment")

type (
	Comment struct {
		ID         string    `json:"id"`
		ItemID     string    `json:"itemId"`
		AuthorID   string    `json:"authorId"`
		AuthorName string    `json:"authorName"`
		Body       string    `json:"body"`
		CreatedAt  time.Time `json:"createdAt"` // UTC
	}

	NewComment struct {
		Body string `json:"body" validate:"required,notblank,max=2000"`
	}

	Repository interface {
		CreateComment(ctx context.Context, c Comment) (Comment, error)
		// ListComments returns the comments of the item, newest first.
		ListComments(ctx context.Context, itemID string) ([]Comment, error)
	}

	Items interface {
		Get(ctx context.Context, id string) (catalog.Item, error)
	}

	Service struct {
		repo     Repository
		items    Items
		validate *validator.Validate
	}
)

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Body = strings.TrimSpace(nc.Body)
	return validate.Struct(nc)
}

func NewService(repo Repository, items Items, validate *validator.Validate) *Service {
	return &Service{repo: repo, items: items, validate: validate}
}

// Post adds a comment by sess on the item. The author name is copied from the session.
func (svc *Service) Post(ctx context.Context, sess core.Session, itemID string, nc NewComment) (Comment, error) {
	if !sess.IsAuthenticated() {
		return Comment{}, errSignIn
	}
	if err := nc.Validate(svc.validate); err != nil {
		return Comment{}, err
	}
	it, err := svc.items.Get(ctx, itemID)
	if err != nil {
		return Comment{}, err
	}

	name := core.CleanString(sess.DisplayName)
	if name == "" {
		name = anonymousName
	}
	return svc.repo.CreateComment(ctx, Comment{
		ItemID:     it.ID,
		AuthorID:   sess.UserID,
		AuthorName: name,
		Body:       nc.Body,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) List(ctx context.Context, itemID string) ([]Comment, error) {
	if _, err := svc.items.Get(ctx, itemID); err != nil {
		return nil, err
	}
	return svc.repo.ListComments(ctx, itemID)
}
