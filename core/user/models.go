package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
)

// Profile is the stored counterpart of an auth identity.
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	Bio            string    `json:"bio"`
	Role           core.Role `json:"role"`
	CompletedItems []string  `json:"completedItems"`
	Preferences    []string  `json:"preferences"`
	CreatedAt      time.Time `json:"createdAt"` // UTC
	UpdatedAt      time.Time `json:"updatedAt"` // UTC
}

func (p Profile) HasCompleted(itemID string) bool {
	return core.ContainsString(p.CompletedItems, itemID)
}

func (p Profile) Session() core.Session {
	return core.Session{
		UserID:      p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        p.Role,
	}
}

// Identity is what the auth provider tells about the caller.
type Identity struct {
	UserID      string `json:"sub" validate:"required,max=128"`
	Email       string `json:"email" validate:"omitempty,email"`
	DisplayName string `json:"name" validate:"max=100"`
}

func (id *Identity) Validate(validate *validator.Validate) error {
	id.UserID = core.CleanString(id.UserID)
	id.Email = core.CleanString(id.Email, true /* lower */)
	id.DisplayName = core.CleanString(id.DisplayName)
	return validate.Struct(id)
}

// UpdateProfile defines what a user may change on their own profile.
type UpdateProfile struct {
	DisplayName string `json:"displayName" validate:"required,notblank,max=100"`
	Bio         string `json:"bio" validate:"max=1000"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.DisplayName = core.CleanString(up.DisplayName)
	up.Bio = strings.TrimSpace(up.Bio)
	return validate.Struct(up)
}

type QueryFilter struct {
	Search string    `query:"search"`
	Role   core.Role `query:"role"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.Role(core.CleanString(string(qf.Role), true /* lower */))
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == ""
}

// Match reports whether p matches the filter. Search is a case-insensitive match on DisplayName or Email.
func (qf QueryFilter) Match(p Profile) bool {
	if qf.Role != "" && p.Role != qf.Role {
		return false
	}
	if qf.Search != "" {
		term := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(p.DisplayName), term) && !strings.Contains(strings.ToLower(p.Email), term) {
			return false
		}
	}
	return true
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Completed   int    `json:"completed"`
}
