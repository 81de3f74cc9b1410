package model

import "encoding/json"

// Role is the canonical authorization role. The backend has shipped
// two wire shapes for roles, a bare string ("ROLE_ADMIN") and an
// object ({"name":"ROLE_ADMIN"}); both normalize to this enum at the
// model boundary so nothing downstream ever branches on shape.
type Role string

const (
	RoleAdmin        Role = "ROLE_ADMIN"
	RolePractitioner Role = "ROLE_PRACTITIONER"
	RoleUnassigned   Role = ""
)

// ParseRole maps a wire role string to the enum. Unknown values map
// to RoleUnassigned rather than failing.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RolePractitioner:
		return RolePractitioner
	default:
		return RoleUnassigned
	}
}

func (r Role) String() string { return string(r) }

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts both wire shapes.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = ParseRole(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = ParseRole(obj.Name)
	return nil
}
