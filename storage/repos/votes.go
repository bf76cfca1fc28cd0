package docrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/rating"
)

// VoteRepository keeps the votes in the `votes` array of the item they rate.
type VoteRepository struct {
	base
}

var _ rating.Repository = (*VoteRepository)(nil) // interface compliance check

type voteList struct {
	Votes []rating.Vote `json:"votes" validate:"dive"`
}

func (repo VoteRepository) votes(doc docstore.Document) ([]rating.Vote, error) {
	var vl voteList
	if err := repo.decode(doc, &vl); err != nil {
		return nil, err
	}
	if vl.Votes == nil {
		vl.Votes = []rating.Vote{}
	}
	return vl.Votes, nil
}

func (repo VoteRepository) locate(ctx context.Context, itemID string) (catalog.Section, docstore.Document, error) {
	section, doc, err := ItemRepository(repo).locate(ctx, itemID)
	if errors.Is(err, catalog.ErrNotFound) {
		return "", docstore.Document{}, rating.ErrItemNotFound
	}
	return section, doc, err
}

func (repo VoteRepository) ReplaceVote(ctx context.Context, itemID string, v rating.Vote) ([]rating.Vote, error) {
	if err := repo.validate.Struct(v); err != nil {
		return nil, errors.Wrap(err, "invalid vote")
	}
	section, _, err := repo.locate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	doc, err := repo.store.ArrayReplace(ctx, section.Collection(), itemID, "votes", "userId", v)
	if err != nil {
		return nil, trap(err, rating.ErrItemNotFound, "replacing vote")
	}
	return repo.votes(doc)
}

func (repo VoteRepository) Votes(ctx context.Context, itemID string) ([]rating.Vote, error) {
	_, doc, err := repo.locate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return repo.votes(doc)
}
