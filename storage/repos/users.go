package docrepos

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
)

type (
	UserRepository struct {
		base
	}

	profileRecord struct {
		Email          null.String `json:"email" validate:"omitempty,email"`
		DisplayName    string      `json:"displayName" validate:"required"`
		Bio            null.String `json:"bio"`
		Role           string      `json:"role" validate:"required,oneof=user admin"`
		CompletedItems []string    `json:"completedItems"`
		Preferences    []string    `json:"preferences"`
	}
)

var _ user.Repository = (*UserRepository)(nil) // interface compliance check

func (repo UserRepository) boil(p user.Profile) profileRecord {
	rec := profileRecord{
		Email:          nullString(p.Email),
		DisplayName:    p.DisplayName,
		Bio:            nullString(p.Bio),
		Role:           string(p.Role),
		CompletedItems: p.CompletedItems,
		Preferences:    p.Preferences,
	}
	if rec.CompletedItems == nil {
		rec.CompletedItems = []string{}
	}
	if rec.Preferences == nil {
		rec.Preferences = []string{}
	}
	return rec
}

func (repo UserRepository) unboil(doc docstore.Document) (user.Profile, error) {
	var rec profileRecord
	if err := repo.decode(doc, &rec); err != nil {
		return user.Profile{}, err
	}
	p := user.Profile{
		ID:             doc.ID,
		Email:          rec.Email.String,
		DisplayName:    rec.DisplayName,
		Bio:            rec.Bio.String,
		Role:           core.Role(rec.Role),
		CompletedItems: rec.CompletedItems,
		Preferences:    rec.Preferences,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	if p.CompletedItems == nil {
		p.CompletedItems = []string{}
	}
	if p.Preferences == nil {
		p.Preferences = []string{}
	}
	return p, nil
}

func (repo UserRepository) result(doc docstore.Document, err error, msg string) (user.Profile, error) {
	if err != nil {
		return user.Profile{}, trap(err, user.ErrNotFound, msg)
	}
	return repo.unboil(doc)
}

func (repo UserRepository) CreateProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	data, err := repo.encode(repo.boil(p))
	if err != nil {
		return user.Profile{}, err
	}
	doc, err := repo.store.Create(ctx, docstore.Users, docstore.Document{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Data:      data,
	})
	if core.KindOf(err) == core.KindConflict {
		return user.Profile{}, user.ErrExists
	}
	return repo.result(doc, err, "inserting profile")
}

func (repo UserRepository) GetProfile(ctx context.Context, id string) (user.Profile, error) {
	doc, err := repo.store.Get(ctx, docstore.Users, id)
	return repo.result(doc, err, "getting profile")
}

func (repo UserRepository) QueryProfiles(ctx context.Context, filter user.QueryFilter) ([]user.Profile, error) {
	q := docstore.Query{Ascending: true}
	if filter.Role != "" {
		q.Filters = append(q.Filters, docstore.Eq("role", string(filter.Role)))
	}
	docs, err := repo.store.Query(ctx, docstore.Users, q)
	if err != nil {
		return nil, trap(err, nil, "querying profiles")
	}

	profiles := make([]user.Profile, 0, len(docs))
	for _, doc := range docs {
		p, err := repo.unboil(doc)
		if err != nil {
			if repo.skipMalformed(docstore.Users, err) {
				continue
			}
			return nil, err
		}
		if filter.Match(p) {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

func (repo UserRepository) UpdateProfile(ctx context.Context, id string, up user.UpdateProfile) (user.Profile, error) {
	doc, err := repo.store.MergeUpdate(ctx, docstore.Users, id, map[string]interface{}{
		"displayName": up.DisplayName,
		"bio":         nullString(up.Bio),
	})
	return repo.result(doc, err, "updating profile")
}

func (repo UserRepository) SetRole(ctx context.Context, id string, role core.Role) (user.Profile, error) {
	doc, err := repo.store.MergeUpdate(ctx, docstore.Users, id, map[string]interface{}{"role": string(role)})
	return repo.result(doc, err, "updating role")
}

func (repo UserRepository) SetPreferences(ctx context.Context, id string, prefs []string) (user.Profile, error) {
	if prefs == nil {
		prefs = []string{}
	}
	doc, err := repo.store.MergeUpdate(ctx, docstore.Users, id, map[string]interface{}{"preferences": prefs})
	return repo.result(doc, err, "updating preferences")
}

func (repo UserRepository) AddCompleted(ctx context.Context, id, itemID string) (user.Profile, error) {
	doc, err := repo.store.ArrayUnion(ctx, docstore.Users, id, "completedItems", itemID)
	return repo.result(doc, err, "adding completed item")
}
