// Package routes wires every HTTP operation into the API.
package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/profile-directory/internal/http/health"
	"github.com/janisto/profile-directory/internal/http/v1/profile"
	profilesvc "github.com/janisto/profile-directory/internal/service/profile"
)

// Register wires all HTTP routes into the provided API router.
func Register(api huma.API, profileService profilesvc.Service) {
	health.Register(api)
	profile.Register(api, profileService)
}
