package models

import "errors"

// User is the signed-in platform account shown in the profile header.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Validate checks that all user fields are valid
func (u *User) Validate() error {
	if u.ID <= 0 {
		return errors.New("user ID must be positive")
	}
	if u.Login == "" {
		return errors.New("user login must not be empty")
	}
	return nil
}
