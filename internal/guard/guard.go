// Package guard decides route transitions from session state alone.
// Decide is deterministic and never touches the network.
package guard

import "github.com/JFR35/pdaw-client/internal/model"

// Navigation surface paths.
const (
	LoginPath               = "/"
	DashboardPath           = "/dashboard"
	AdminLandingPath        = "/dashboard/config"
	PractitionerLandingPath = "/dashboard/appointments"
)

// Route is a target route's declared requirements.
type Route struct {
	Path         string
	RequiresAuth bool
	Roles        []model.Role // empty means no role restriction
}

// Decision is either an allow or a redirect.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

var Allow = Decision{Allowed: true}

func Redirect(path string) Decision {
	return Decision{RedirectTo: path}
}

// Decide applies the guard rules in fixed order:
//  1. auth required and not logged in -> login path
//  2. login path while logged in -> dashboard
//  3. role restriction not met -> landing path for the session's role
//  4. allow
//
// A route matching several rules resolves to the first.
func Decide(route Route, s model.Session) Decision {
	if route.RequiresAuth && !s.LoggedIn {
		return Redirect(LoginPath)
	}

	if route.Path == LoginPath && s.LoggedIn {
		return Redirect(DashboardPath)
	}

	if len(route.Roles) > 0 && !roleAllowed(route.Roles, s.Role) {
		switch {
		case s.IsAdmin():
			return Redirect(AdminLandingPath)
		case s.IsPractitioner():
			return Redirect(PractitionerLandingPath)
		default:
			return Redirect(LoginPath)
		}
	}

	return Allow
}

func roleAllowed(allowed []model.Role, have model.Role) bool {
	for _, r := range allowed {
		if r == have {
			return true
		}
	}
	return false
}
