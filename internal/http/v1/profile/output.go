package profile

// ProfileCreateOutput for POST /api/save-profile (201 Created)
type ProfileCreateOutput struct {
	Location string `header:"Location" doc:"URL of the created profile"`
	Body     SaveResult
}

// ProfileListOutput for GET /
type ProfileListOutput struct {
	Body []Profile
}

// ProfileGetOutput for profile reads and updates
type ProfileGetOutput struct {
	Body Profile
}

// VerificationOutput for GET /profile/{profileKey}
type VerificationOutput struct {
	Body Verification
}

// ProfileDeleteOutput for DELETE /api/profiles/{profileKey}
type ProfileDeleteOutput struct {
	Body Message
}
