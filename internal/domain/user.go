package domain

type ContextKey string

const UserContextKey ContextKey = "user"

// User is the authenticated caller, built from token claims.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CanManageStore reports whether the user may change store settings and
// product classifications.
func (u *User) CanManageStore() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleShopManager
}
