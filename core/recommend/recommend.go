// Package recommend suggests catalog items in the categories a user prefers and has not completed yet.
package recommend

import (
	"context"
	"sort"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
)

type (
	Catalog interface {
		Query(ctx context.Context, f catalog.Filter) ([]catalog.Item, error)
	}

	Profiles interface {
		Get(ctx context.Context, sess core.Session, userID string) (user.Profile, error)
	}

	Service struct {
		catalog      Catalog
		profiles     Profiles
		defaultLimit int
	}
)

func NewService(conf *core.Config, items Catalog, profiles Profiles) *Service {
	return &Service{
		catalog:      items,
		profiles:     profiles,
		defaultLimit: conf.Catalog.RecommendationLimit,
	}
}

// Recommend returns up to limit items whose category is one of the user's preferences,
// skipping the items the user completed. Results are newest first.
// A user without preferences gets no recommendations.
func (svc *Service) Recommend(ctx context.Context, sess core.Session, userID string, limit int) ([]catalog.Item, error) {
	p, err := svc.profiles.Get(ctx, sess, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = svc.defaultLimit
	}

	res := make([]catalog.Item, 0, limit)
	if len(p.Preferences) == 0 {
		return res, nil
	}

	seen := make(map[string]struct{})
	for _, category := range p.Preferences {
		items, err := svc.catalog.Query(ctx, catalog.Filter{Category: category})
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if _, ok := seen[it.ID]; ok || p.HasCompleted(it.ID) {
				continue
			}
			seen[it.ID] = struct{}{}
			res = append(res, it)
		}
	}

	sort.Slice(res, func(i, j int) bool {
		return docstore.Before(res[i].Position(), res[j].Position())
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
