package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrExists   = errors.New("email already registered")
)

// Roles. Students sell consultations, applicants buy them.
const (
	RoleApplicant = "applicant"
	RoleStudent   = "student"
	RoleAdmin     = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Bio          string    `json:"bio,omitempty"`
	University   string    `json:"university,omitempty"`
	StudyProgram string    `json:"study_program,omitempty"`
	Country      string    `json:"country,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicProfile is the subset of a user shown to other users.
type PublicProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Bio          string    `json:"bio,omitempty"`
	University   string    `json:"university,omitempty"`
	StudyProgram string    `json:"study_program,omitempty"`
	Country      string    `json:"country,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		Name:         u.Name,
		Role:         u.Role,
		Bio:          u.Bio,
		University:   u.University,
		StudyProgram: u.StudyProgram,
		Country:      u.Country,
		AvatarURL:    u.AvatarURL,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}

// ProfileUpdate carries the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name         *string `json:"name"`
	Bio          *string `json:"bio"`
	University   *string `json:"university"`
	StudyProgram *string `json:"study_program"`
	Country      *string `json:"country"`
	AvatarURL    *string `json:"avatar_url"`
}
