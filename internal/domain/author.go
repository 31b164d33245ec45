package domain

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Author is the public projection of a user attached to products and reviews.
// It never carries credentials.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// User is an account record. Accounts are managed elsewhere; the storefront
// only reads them to resolve authors.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Author returns the public projection of the user.
func (u *User) Author() *Author {
	return &Author{ID: u.ID, Username: u.Username, Email: u.Email}
}
