package shared

// shared types across the application
// 1st: roles and the authenticated principal carried through the service layer
// 2nd: add more shared types as needed

// Role is the authorization level of a user.
type Role string

const (
	RoleStandard  Role = "standard"  // default after registration
	RoleModerator Role = "moderator" // may add movies; elevated out-of-band
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleModerator
}

// Principal is an authenticated identity bound to a session.
type Principal struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	SessionID string `json:"-"`
}
