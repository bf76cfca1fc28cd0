// Package rating keeps one vote per user per item and derives the item's mean rating from its votes.
package rating

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
)

const (
	MinRating = 1
	MaxRating = 5
)

var ErrItemNotFound = core.NewError(core.KindNotFound, "item not found")

type (
	Vote struct {
		UserID string `json:"userId" validate:"required"`
		Rating int    `json:"rating" validate:"min=1,max=5"`
	}

	Summary struct {
		Mean    float64 `json:"mean"`    // full precision
		Display float64 `json:"display"` // rounded to one decimal
		Count   int     `json:"count"`
	}

	// Repository stores votes inside the item they rate.
	Repository interface {
		// ReplaceVote atomically removes the user's previous vote on the item, appends v
		// and returns the resulting vote list.
		ReplaceVote(ctx context.Context, itemID string, v Vote) ([]Vote, error)
		Votes(ctx context.Context, itemID string) ([]Vote, error)
	}

	// ChangeFunc is called with the summary derived from a successful vote.
	ChangeFunc func(itemID string, s Summary)

	Service struct {
		repo     Repository
		onChange ChangeFunc
	}
)

// Summarize computes the mean of votes. An empty list has a zero summary.
func Summarize(votes []Vote) Summary {
	if len(votes) == 0 {
		return Summary{}
	}
	var sum int
	for _, v := range votes {
		sum += v.Rating
	}
	mean := float64(sum) / float64(len(votes))
	return Summary{
		Mean:    mean,
		Display: math.Round(mean*10) / 10,
		Count:   len(votes),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%.1f (%d)", s.Display, s.Count)
}

func NewService(repo Repository, onChange ChangeFunc) *Service {
	return &Service{repo: repo, onChange: onChange}
}

// CastVote records sess's vote on the item, replacing any previous one.
func (svc *Service) CastVote(ctx context.Context, sess core.Session, itemID string, value int) (Summary, error) {
	if !sess.IsAuthenticated() {
		return Summary{}, errors.Wrap(core.ErrPermissionDenied, "sign in to vote")
	}
	if value < MinRating || value > MaxRating {
		msg := fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating)
		return Summary{}, core.NewValidationError(errors.New(msg), core.FieldError{Field: "rating", Error: msg})
	}

	votes, err := svc.repo.ReplaceVote(ctx, itemID, Vote{UserID: sess.UserID, Rating: value})
	if err != nil {
		return Summary{}, err
	}
	summary := Summarize(votes)
	if svc.onChange != nil {
		svc.onChange(itemID, summary)
	}
	return summary, nil
}

func (svc *Service) Summary(ctx context.Context, itemID string) (Summary, error) {
	votes, err := svc.repo.Votes(ctx, itemID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(votes), nil
}

// UserVote returns the vote userID cast on the item, if any.
func (svc *Service) UserVote(ctx context.Context, itemID, userID string) (Vote, bool, error) {
	votes, err := svc.repo.Votes(ctx, itemID)
	if err != nil {
		return Vote{}, false, err
	}
	for _, v := range votes {
		if v.UserID == userID {
			return v, true, nil
		}
	}
	return Vote{}, false, nil
}
