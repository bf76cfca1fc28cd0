package docrepos

import (
	"context"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/comment"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
)

type (
	CommentRepository struct {
		base
	}

	commentRecord struct {
		ItemID     string `json:"itemId" validate:"required"`
		AuthorID   string `json:"authorId" validate:"required"`
		AuthorName string `json:"authorName" validate:"required"`
		Body       string `json:"body" validate:"required"`
	}
)

var _ comment.Repository = (*CommentRepository)(nil) // interface compliance check

func (repo CommentRepository) unboil(doc docstore.Document) (comment.Comment, error) {
	var rec commentRecord
	if err := repo.decode(doc, &rec); err != nil {
		return comment.Comment{}, err
	}
	return comment.Comment{
		ID:         doc.ID,
		ItemID:     rec.ItemID,
		AuthorID:   rec.AuthorID,
		AuthorName: rec.AuthorName,
		Body:       rec.Body,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (repo CommentRepository) CreateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	data, err := repo.encode(commentRecord{
		ItemID:     c.ItemID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
	})
	if err != nil {
		return comment.Comment{}, err
	}
	doc, err := repo.store.Create(ctx, docstore.Comments, docstore.Document{CreatedAt: c.CreatedAt, Data: data})
	if err != nil {
		return comment.Comment{}, trap(err, nil, "inserting comment")
	}
	return repo.unboil(doc)
}

func (repo CommentRepository) ListComments(ctx context.Context, itemID string) ([]comment.Comment, error) {
	docs, err := repo.store.Query(ctx, docstore.Comments, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("itemId", itemID)},
	})
	if err != nil {
		return nil, trap(err, nil, "querying comments")
	}
	comments := make([]comment.Comment, 0, len(docs))
	for _, doc := range docs {
		c, err := repo.unboil(doc)
		if err != nil {
			if repo.skipMalformed(docstore.Comments, err) {
				continue
			}
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}
