package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	Role   Role   `json:"role"`
	UserID string `json:"userId"`
}

// Session is the authenticated identity held by the client. LoggedIn
// is true iff Token is non-empty; the session manager maintains that
// invariant across every operation.
type Session struct {
	LoggedIn bool
	Username string
	Token    string
	Role     Role
	UserID   string
}

func (s Session) IsAdmin() bool        { return s.Role == RoleAdmin }
func (s Session) IsPractitioner() bool { return s.Role == RolePractitioner }
