package core

// Roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var AllRoles = []Role{RoleUser, RoleAdmin}

type Role string

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Session identifies the caller of a core operation.
// It is built per request from the auth identity and the stored profile role; it is never global.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	Role        Role
}

// Anonymous is the Session of a caller without an auth identity.
var Anonymous = Session{}

func (s Session) IsAuthenticated() bool { return s.UserID != "" }
func (s Session) IsAdmin() bool         { return s.IsAuthenticated() && s.Role == RoleAdmin }

// Owns reports whether the session acts as the given user.
func (s Session) Owns(userID string) bool {
	return s.IsAuthenticated() && s.UserID == userID
}

// CanView reports whether the session may read the given user's data.
func (s Session) CanView(userID string) bool {
	return s.Owns(userID) || s.IsAdmin()
}
