package domain

const (
	RoleAdmin   = "admin"
	RoleBuilder = "builder"
	RoleBuyer   = "buyer"
)

// Actor is the authenticated caller as asserted by the bearer token.
type Actor struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsBuilder() bool {
	return a.Role == RoleBuilder
}
