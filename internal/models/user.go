package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Profile      string    `json:"profile"`
	About        string    `json:"about"`
	CreatedAt    time.Time `json:"created_at"`
}

// MiniUser is the compact user payload embedded in messages, notifications
// and member lists.
type MiniUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Profile  string `json:"profile"`
	About    string `json:"about"`
}

func (u *User) Mini() *MiniUser {
	if u == nil {
		return nil
	}
	return &MiniUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Profile:  u.Profile,
		About:    u.About,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
