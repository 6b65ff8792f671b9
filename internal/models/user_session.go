package models

// Platform roles carried in the session cookie
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleAdmin   = "admin"
)

// UserSession is the authenticated session extracted from the JWT cookie
type UserSession struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expiresAt"`
	IssuedAt  int64  `json:"issuedAt"`
}

// IsAdmin reports whether the session belongs to an admin
func (s *UserSession) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// IsMentor reports whether the session belongs to a mentor
func (s *UserSession) IsMentor() bool {
	return s.Role == RoleMentor
}
