package model

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleViewer   Role = "VIEWER"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID string
	Name   string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanModerate reports whether the caller may verify records or annotate
// violations.
func (p Principal) CanModerate() bool {
	return p.Role == RoleAdmin || p.Role == RoleOperator
}
