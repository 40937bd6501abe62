package profile

import (
	"github.com/janisto/profile-directory/internal/platform/timeutil"
	profilesvc "github.com/janisto/profile-directory/internal/service/profile"
)

// SocialLinks are optional links shown on a profile card.
type SocialLinks struct {
	Website   string `json:"website,omitempty"   doc:"Personal website"  example:"https://jane.example"`
	Instagram string `json:"instagram,omitempty" doc:"Instagram link"`
	Facebook  string `json:"facebook,omitempty"  doc:"Facebook link"`
	Telegram  string `json:"telegram,omitempty"  doc:"Telegram link"`
	TikTok    string `json:"tiktok,omitempty"    doc:"TikTok link"`
	YouTube   string `json:"youtube,omitempty"   doc:"YouTube link"`
	WhatsApp  string `json:"whatsapp,omitempty"  doc:"WhatsApp link"`
	Maps      string `json:"maps,omitempty"      doc:"Maps location link"`
	Snapchat  string `json:"snapchat,omitempty"  doc:"Snapchat link"`
}

// Profile represents a directory listing in responses.
type Profile struct {
	ProfileKey   string        `json:"profileKey"             doc:"Canonical key derived from the username" example:"jane-doe"`
	Username     string        `json:"username"               doc:"Display username"                        example:"Jane Doe"`
	Name         string        `json:"name,omitempty"         doc:"Full name"                               example:"Jane Doe"`
	JobTitle     string        `json:"jobTitle,omitempty"     doc:"Job title"                               example:"Engineer"`
	ProfileImage string        `json:"profileImage,omitempty" doc:"Profile image reference"`
	HeaderImage  string        `json:"headerImage,omitempty"  doc:"Header image reference"`
	Phone        string        `json:"phone,omitempty"        doc:"Phone number"                            example:"+358401234567"`
	Email        string        `json:"email,omitempty"        doc:"Email address"                           example:"jane@example.com"`
	IsVerified   bool          `json:"isVerified"             doc:"Verification status"                     example:"false"`
	SocialLinks  SocialLinks   `json:"socialLinks"            doc:"Social links"`
	CreatedAt    timeutil.Time `json:"createdAt"              doc:"Creation timestamp"                      example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt    timeutil.Time `json:"updatedAt"              doc:"Last update timestamp"                   example:"2024-01-15T10:30:00.000Z"`
}

// Verification is the public verification status of a profile.
type Verification struct {
	Username   string `json:"username"   doc:"Display username"    example:"Jane Doe"`
	IsVerified bool   `json:"isVerified" doc:"Verification status" example:"true"`
}

// SaveResult is returned after a profile is created.
type SaveResult struct {
	Message    string `json:"message"    doc:"Outcome"                                 example:"Profile saved successfully"`
	ProfileKey string `json:"profileKey" doc:"Canonical key derived from the username" example:"jane-doe"`
}

// Message is a plain confirmation payload.
type Message struct {
	Message string `json:"message" doc:"Outcome" example:"Profile deleted successfully"`
}

func toHTTPProfile(p *profilesvc.Profile) Profile {
	return Profile{
		ProfileKey:   p.Key,
		Username:     p.Username,
		Name:         p.Name,
		JobTitle:     p.JobTitle,
		ProfileImage: p.ProfileImage,
		HeaderImage:  p.HeaderImage,
		Phone:        p.Phone,
		Email:        p.Email,
		IsVerified:   p.IsVerified,
		SocialLinks:  SocialLinks(p.SocialLinks),
		CreatedAt:    timeutil.NewTime(p.CreatedAt),
		UpdatedAt:    timeutil.NewTime(p.UpdatedAt),
	}
}
