// Package permissions holds the role table checked by the RBAC middleware.
// Paths are chi route patterns, e.g. /v1/leads/{id}.
package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

type Permission struct {
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Roles  []string `json:"roles"`
	Skip   bool     `json:"skip"`
}

// Allows reports whether role may call the endpoint. An endpoint without
// roles is open to every authenticated user.
func (p Permission) Allows(role string) bool {
	return len(p.Roles) == 0 || slices.Contains(p.Roles, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
}

func key(method, path string) string {
	return method + " " + path
}

// Find looks up the endpoint registered for method and route pattern.
func (r *PermissionData) Find(method, path string) (Permission, bool) {
	permission, ok := r.index[key(method, path)]

	return permission, ok
}

// Parse decodes a permission table, rejecting duplicated endpoints.
func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	permissions.index = make(map[string]Permission, len(permissions.Endpoints))

	for _, endpoint := range permissions.Endpoints {
		k := key(endpoint.Method, endpoint.Path)
		if _, ok := permissions.index[k]; ok {
			return nil, fmt.Errorf("duplicate permission for %s", k)
		}

		permissions.index[k] = endpoint
	}

	return &permissions, nil
}

// Get loads the embedded permission table.
func Get() (*PermissionData, error) {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load embedded permissions")

		return nil, err
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Loaded embedded permissions")

	return permissions, nil
}
