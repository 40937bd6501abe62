package profile

import profilesvc "github.com/janisto/profile-directory/internal/service/profile"

// ProfileBody is the writable part of a profile. Username length is checked
// by the service so that short names get the directory's own message.
type ProfileBody struct {
	_ struct{} `json:"-" additionalProperties:"true"`

	Username     string      `json:"username,omitempty"     maxLength:"255" doc:"Display username, at least 3 characters after trimming" example:"Jane Doe"`
	Name         string      `json:"name,omitempty"                         doc:"Full name"                                                example:"Jane Doe"`
	JobTitle     string      `json:"jobTitle,omitempty"                     doc:"Job title"                                                example:"Engineer"`
	ProfileImage string      `json:"profileImage,omitempty"                 doc:"Profile image reference"`
	HeaderImage  string      `json:"headerImage,omitempty"                  doc:"Header image reference"`
	Phone        string      `json:"phone,omitempty"                        doc:"Phone number"                                             example:"+358401234567"`
	Email        string      `json:"email,omitempty"                        doc:"Email address"                                            example:"jane@example.com"`
	IsVerified   bool        `json:"isVerified,omitempty"                   doc:"Verification status"                                      example:"false"`
	SocialLinks  SocialLinks `json:"socialLinks,omitempty"                  doc:"Social links"`
}

func (b ProfileBody) fields() profilesvc.Fields {
	return profilesvc.Fields{
		Username:     b.Username,
		Name:         b.Name,
		JobTitle:     b.JobTitle,
		ProfileImage: b.ProfileImage,
		HeaderImage:  b.HeaderImage,
		Phone:        b.Phone,
		Email:        b.Email,
		IsVerified:   b.IsVerified,
		SocialLinks:  profilesvc.SocialLinks(b.SocialLinks),
	}
}

// ProfileCreateInput for POST /api/save-profile
type ProfileCreateInput struct {
	Body ProfileBody
}

// ProfileListInput for GET / (no parameters)
type ProfileListInput struct{}

// ProfileExactInput for GET /{profileKey}
type ProfileExactInput struct {
	ProfileKey string `path:"profileKey" doc:"Exact username" example:"Jane Doe"`
}

// VerificationInput for GET /profile/{profileKey}
type VerificationInput struct {
	ProfileKey string `path:"profileKey" doc:"Stored profile key" example:"jane-doe"`
}

// ProfileLookupInput for GET /api/profiles/{profileusername}
type ProfileLookupInput struct {
	ProfileUsername string `path:"profileusername" doc:"Username in any letter case, hyphenated" example:"Jane-Doe"`
}

// ProfileDeleteInput for DELETE /api/profiles/{profileKey}
type ProfileDeleteInput struct {
	ProfileKey string `path:"profileKey" doc:"Username in any letter case, hyphenated" example:"jane-doe"`
}

// ProfileUpdateInput for PUT /api/update-profile/{profileKey}
type ProfileUpdateInput struct {
	ProfileKey string `path:"profileKey" doc:"Username in any letter case, hyphenated" example:"jane-doe"`
	Body       ProfileBody
}
