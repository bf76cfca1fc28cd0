package user

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
)

var (
	// errors
	ErrNotFound = core.NewError(core.KindNotFound, "user not found")
	ErrExists   = core.NewError(core.KindConflict, "a profile with this id already exists")

	errNotOwner  = errors.Wrap(core.ErrPermissionDenied, "you can only change your own profile")
	errNotViewer = errors.Wrap(core.ErrPermissionDenied, "you cannot view this profile")
	errAdminOnly = errors.Wrap(core.ErrPermissionDenied, "only admins can manage users")
)

type (
	Repository interface {
		CreateProfile(ctx context.Context, p Profile) (Profile, error)
		GetProfile(ctx context.Context, id string) (Profile, error)
		// QueryProfiles applies AND operation on available QueryFilter fields.
		QueryProfiles(ctx context.Context, filter QueryFilter) ([]Profile, error)
		UpdateProfile(ctx context.Context, id string, up UpdateProfile) (Profile, error)
		SetRole(ctx context.Context, id string, role core.Role) (Profile, error)
		SetPreferences(ctx context.Context, id string, prefs []string) (Profile, error)
		// AddCompleted atomically adds itemID to the completed items of the profile.
		AddCompleted(ctx context.Context, id, itemID string) (Profile, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// EnsureProfile returns the profile of the identity, creating a `user` profile on first sighting.
func (svc *Service) EnsureProfile(ctx context.Context, ident Identity) (Profile, error) {
	if err := ident.Validate(svc.validate); err != nil {
		return Profile{}, err
	}
	p, err := svc.repo.GetProfile(ctx, ident.UserID)
	if err == nil {
		return p, nil
	}
	if core.KindOf(err) != core.KindNotFound {
		return Profile{}, err
	}

	name := ident.DisplayName
	if name == "" {
		name = "Anonymous"
	}
	now := time.Now().UTC()
	p, err = svc.repo.CreateProfile(ctx, Profile{
		ID:             ident.UserID,
		Email:          ident.Email,
		DisplayName:    name,
		Role:           core.RoleUser,
		CompletedItems: []string{},
		Preferences:    []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if core.KindOf(err) == core.KindConflict {
		// created concurrently by another request
		return svc.repo.GetProfile(ctx, ident.UserID)
	}
	return p, err
}

// Session builds the session of the identity. The role always comes from the stored profile.
func (svc *Service) Session(ctx context.Context, ident Identity) (core.Session, error) {
	p, err := svc.EnsureProfile(ctx, ident)
	if err != nil {
		return core.Anonymous, err
	}
	return p.Session(), nil
}

func (svc *Service) Get(ctx context.Context, sess core.Session, userID string) (Profile, error) {
	if !sess.CanView(userID) {
		return Profile{}, errNotViewer
	}
	return svc.repo.GetProfile(ctx, userID)
}

func (svc *Service) Query(ctx context.Context, sess core.Session, filter QueryFilter) ([]Profile, error) {
	if !sess.IsAdmin() {
		return nil, errAdminOnly
	}
	filter.Clean()
	return svc.repo.QueryProfiles(ctx, filter)
}

func (svc *Service) UpdateProfile(ctx context.Context, sess core.Session, userID string, up UpdateProfile) (Profile, error) {
	if !sess.Owns(userID) {
		return Profile{}, errNotOwner
	}
	if err := up.Validate(svc.validate); err != nil {
		return Profile{}, err
	}
	return svc.repo.UpdateProfile(ctx, userID, up)
}

// SetRole changes the role of a user. Only admins can change roles.
func (svc *Service) SetRole(ctx context.Context, sess core.Session, userID string, role core.Role) (Profile, error) {
	if !sess.IsAdmin() {
		return Profile{}, errAdminOnly
	}
	role = core.Role(core.CleanString(string(role), true /* lower */))
	if !role.Valid() {
		return Profile{}, core.NewValidationError(errors.New("invalid role"), core.FieldError{Field: "role", Error: "invalid role"})
	}
	return svc.repo.SetRole(ctx, userID, role)
}

// MarkCompleted adds itemID to the completed items of the user. Completing an item twice is not an error.
func (svc *Service) MarkCompleted(ctx context.Context, sess core.Session, userID, itemID string) (Profile, error) {
	if !sess.Owns(userID) {
		return Profile{}, errNotOwner
	}
	itemID = core.CleanString(itemID)
	if itemID == "" {
		return Profile{}, core.NewValidationError(errors.New("item id is required"), core.FieldError{Field: "itemId", Error: "this field is required"})
	}
	return svc.repo.AddCompleted(ctx, userID, itemID)
}

// SetPreferences replaces the preferred categories of the user.
func (svc *Service) SetPreferences(ctx context.Context, sess core.Session, userID string, categories []string) (Profile, error) {
	if !sess.Owns(userID) {
		return Profile{}, errNotOwner
	}
	return svc.repo.SetPreferences(ctx, userID, core.CleanStrings(categories))
}

func (svc *Service) IsCompleted(ctx context.Context, sess core.Session, userID, itemID string) (bool, error) {
	p, err := svc.Get(ctx, sess, userID)
	if err != nil {
		return false, err
	}
	return p.HasCompleted(itemID), nil
}

// Leaderboard ranks users by number of completed items.
func (svc *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	profiles, err := svc.repo.QueryProfiles(ctx, QueryFilter{})
	if err != nil {
		return nil, err
	}
	sort.Slice(profiles, func(i, j int) bool {
		ci, cj := len(profiles[i].CompletedItems), len(profiles[j].CompletedItems)
		if ci != cj {
			return ci > cj
		}
		return profiles[i].ID < profiles[j].ID
	})
	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}

	entries := make([]LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, LeaderboardEntry{
			Rank:        i + 1,
			UserID:      p.ID,
			DisplayName: p.DisplayName,
			Completed:   len(p.CompletedItems),
		})
	}
	return entries, nil
}
