package domain

// Principal is the resolved identity behind a request.
type Principal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Guest returns the principal used for requests without a credential.
func Guest() Principal {
	return Principal{UserID: AnonymousUserID, Role: RoleGuest}
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
