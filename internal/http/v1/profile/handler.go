package profile

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	applog "github.com/janisto/profile-directory/internal/platform/logging"
	profilesvc "github.com/janisto/profile-directory/internal/service/profile"
)

const (
	msgSaved          = "Profile saved successfully"
	msgDeleted        = "Profile deleted successfully"
	msgShortUsername  = "Username must be at least 3 characters long."
	msgUsernameTaken  = "Username is already taken."
	msgNotFound       = "Profile not found"
	msgInternalFailed = "internal error"
)

// Register registers profile endpoints.
func Register(api huma.API, svc profilesvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-profile",
		Method:        http.MethodPost,
		Path:          "/api/save-profile",
		Summary:       "Create profile",
		Description:   "Creates a profile. The profile key is derived from the username and must be unused.",
		Tags:          []string{"Profiles"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *ProfileCreateInput) (*ProfileCreateOutput, error) {
		p, err := svc.Create(ctx, input.Body.fields())
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileCreateOutput{
			Location: "/profile/" + url.PathEscape(p.Key),
			Body:     SaveResult{Message: msgSaved, ProfileKey: p.Key},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-profiles",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "List profiles",
		Description: "Returns every stored profile ordered by profile key.",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, _ *ProfileListInput) (*ProfileListOutput, error) {
		profiles, err := svc.List(ctx)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		out := make([]Profile, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, toHTTPProfile(p))
		}
		return &ProfileListOutput{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile-by-username",
		Method:      http.MethodGet,
		Path:        "/{profileKey}",
		Summary:     "Get profile by exact username",
		Description: "Returns the profile whose stored username equals the path value exactly.",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, input *ProfileExactInput) (*ProfileGetOutput, error) {
		p, err := svc.GetByUsername(ctx, input.ProfileKey)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileGetOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-verification-status",
		Method:      http.MethodGet,
		Path:        "/profile/{profileKey}",
		Summary:     "Get verification status",
		Description: "Returns the username and verification flag of the profile stored under the key.",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, input *VerificationInput) (*VerificationOutput, error) {
		p, err := svc.GetByKey(ctx, input.ProfileKey)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &VerificationOutput{Body: Verification{Username: p.Username, IsVerified: p.IsVerified}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/api/profiles/{profileusername}",
		Summary:     "Get profile by username in any case",
		Description: "Returns the profile whose key matches the hyphenated username, ignoring letter case. " +
			"Replaces GET /profile/{profileusername}, which is served by the verification status lookup.",
		Tags: []string{"Profiles"},
	}, func(ctx context.Context, input *ProfileLookupInput) (*ProfileGetOutput, error) {
		key := profilesvc.CaseInsensitiveKey(input.ProfileUsername)
		if key == "" {
			return nil, huma.Error404NotFound(msgNotFound)
		}
		p, err := svc.GetByKey(ctx, key)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileGetOutput{Body: toHTTPProfile(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-profile",
		Method:      http.MethodDelete,
		Path:        "/api/profiles/{profileKey}",
		Summary:     "Delete profile",
		Description: "Deletes the profile whose key matches the hyphenated username, ignoring letter case.",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, input *ProfileDeleteInput) (*ProfileDeleteOutput, error) {
		key := profilesvc.CaseInsensitiveKey(input.ProfileKey)
		if key == "" {
			return nil, huma.Error404NotFound(msgNotFound)
		}
		if err := svc.Delete(ctx, key); err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileDeleteOutput{Body: Message{Message: msgDeleted}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPut,
		Path:        "/api/update-profile/{profileKey}",
		Summary:     "Replace profile",
		Description: "Replaces every field of the matched profile. Omitted fields are cleared. " +
			"A new username moves the profile to its new key.",
		Tags: []string{"Profiles"},
	}, func(ctx context.Context, input *ProfileUpdateInput) (*ProfileGetOutput, error) {
		key := profilesvc.CaseInsensitiveKey(input.ProfileKey)
		if key == "" {
			return nil, huma.Error404NotFound(msgNotFound)
		}
		p, err := svc.Update(ctx, key, input.Body.fields())
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ProfileGetOutput{Body: toHTTPProfile(p)}, nil
	})
}

func mapServiceError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, profilesvc.ErrInvalidUsername):
		return huma.Error400BadRequest(msgShortUsername)
	case errors.Is(err, profilesvc.ErrAlreadyExists):
		return huma.Error400BadRequest(msgUsernameTaken)
	case errors.Is(err, profilesvc.ErrNotFound):
		return huma.Error404NotFound(msgNotFound)
	default:
		applog.LogError(ctx, "profile store failure", err)
		return huma.Error500InternalServerError(msgInternalFailed)
	}
}
