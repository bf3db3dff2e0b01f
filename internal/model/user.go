package model

import "time"

type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
}

func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}
