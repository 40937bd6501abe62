package profile

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MinUsernameLength is the shortest accepted username after trimming.
const MinUsernameLength = 3

// Service errors
var (
	ErrNotFound        = errors.New("profile not found")
	ErrAlreadyExists   = errors.New("profile already exists")
	ErrInvalidUsername = errors.New("username must be at least 3 characters long")
)

// SocialLinks holds optional links to external presences.
type SocialLinks struct {
	Website   string
	Instagram string
	Facebook  string
	Telegram  string
	TikTok    string
	YouTube   string
	WhatsApp  string
	Maps      string
	Snapchat  string
}

// Profile represents stored profile data.
type Profile struct {
	Key          string
	Username     string
	Name         string
	JobTitle     string
	ProfileImage string
	HeaderImage  string
	Phone        string
	Email        string
	IsVerified   bool
	SocialLinks  SocialLinks
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Fields is the full, user-supplied field set of a profile.
type Fields struct {
	Username     string
	Name         string
	JobTitle     string
	ProfileImage string
	HeaderImage  string
	Phone        string
	Email        string
	IsVerified   bool
	SocialLinks  SocialLinks
}

// CreateParams for creating a profile.
type CreateParams = Fields

// UpdateParams for replacing a profile. Every field is written; zero values
// clear the stored value.
type UpdateParams = Fields

// Service defines profile operations.
//
// Implementations must:
//   - trim Username and reject it with ErrInvalidUsername when shorter than MinUsernameLength
//   - persist Key as DeriveKey(Username) and keep it unique
//   - report duplicates found by the storage write itself as ErrAlreadyExists
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	GetByUsername(ctx context.Context, username string) (*Profile, error)
	GetByKey(ctx context.Context, key string) (*Profile, error)
	Update(ctx context.Context, key string, params UpdateParams) (*Profile, error)
	Delete(ctx context.Context, key string) error
}

// prepare trims and validates the username and derives the profile key.
func prepare(f Fields) (Fields, string, error) {
	f.Username = strings.TrimSpace(f.Username)
	if utf8.RuneCountInString(f.Username) < MinUsernameLength {
		return f, "", ErrInvalidUsername
	}
	return f, DeriveKey(f.Username), nil
}

// storedNow returns the current time at the microsecond precision Firestore
// and Postgres keep, so returned records match what a later read yields.
func storedNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func newProfile(key string, f Fields, createdAt, updatedAt time.Time) *Profile {
	return &Profile{
		Key:          key,
		Username:     f.Username,
		Name:         f.Name,
		JobTitle:     f.JobTitle,
		ProfileImage: f.ProfileImage,
		HeaderImage:  f.HeaderImage,
		Phone:        f.Phone,
		Email:        f.Email,
		IsVerified:   f.IsVerified,
		SocialLinks:  f.SocialLinks,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}
