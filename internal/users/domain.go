package users

import "time"

// User represents a stored user account. PasswordHash never leaves the
// service layer; responses are built through View.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Inactive     bool
	Image        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View is the response shape for user-facing endpoints. Exactly these four
// fields, regardless of what the stored record contains.
type View struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}

// NewView projects a user onto the response whitelist.
func NewView(u *User) View {
	return View{ID: u.ID, Username: u.Username, Email: u.Email, Image: u.Image}
}
