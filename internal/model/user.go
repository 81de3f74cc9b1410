package model

// User is an administrator-managed account. Roles arrive in the mixed
// wire shapes Role normalizes.
type User struct {
	UserID    int64  `json:"userId,omitempty"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password,omitempty"`
	Roles     []Role `json:"roles,omitempty"`
}

// HasRole reports whether the user carries r after normalization.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}
