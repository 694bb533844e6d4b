package models

import (
	"time"

	"github.com/ihere-app/ihere-backend/internal/store"
)

// User represents a profile document in the "users" collection. The id is the
// identity platform's stable uid; the username is unique but mutable.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email,omitempty"`
	ProfilePic  string    `json:"profilePic,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DisplayName is the name shown to other users, falling back from full name
// to username to a generic placeholder.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

// Doc flattens the user into a store document. The id is written as a field
// as well because batch lookups filter on it.
func (u User) Doc() map[string]interface{} {
	return map[string]interface{}{
		"id":          u.ID,
		"username":    u.Username,
		"fullName":    u.FullName,
		"email":       u.Email,
		"profilePic":  u.ProfilePic,
		"location":    u.Location,
		"description": u.Description,
		"createdAt":   u.CreatedAt,
	}
}

// UserFromDoc rebuilds a User from a store document.
func UserFromDoc(d store.Document) User {
	return User{
		ID:          d.ID,
		Username:    DocString(d.Data, "username"),
		FullName:    DocString(d.Data, "fullName"),
		Email:       DocString(d.Data, "email"),
		ProfilePic:  DocString(d.Data, "profilePic"),
		Location:    DocString(d.Data, "location"),
		Description: DocString(d.Data, "description"),
		CreatedAt:   DocTime(d.Data, "createdAt"),
	}
}

// CreateProfileRequest defines the request body for creating the caller's
// profile document after signup.
type CreateProfileRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=80"`
	Username string `json:"username" validate:"required,min=2,max=30"`
	Email    string `json:"email" validate:"omitempty,email"`
	Location string `json:"location" validate:"omitempty,max=120"`
}

// UpdateProfileRequest defines the request body for editing the caller's
// own profile.
type UpdateProfileRequest struct {
	FullName    string `json:"fullName,omitempty" validate:"omitempty,min=2,max=80"`
	Username    string `json:"username,omitempty" validate:"omitempty,min=2,max=30"`
	Location    string `json:"location,omitempty" validate:"omitempty,max=120"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// BatchUsersRequest asks for several profiles at once; the response is
// aligned to the requested order with null entries for unknown ids.
type BatchUsersRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}
