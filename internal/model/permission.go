package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionCatalogRead allows reading persisted surveys.
	PermissionCatalogRead Permission = "catalog:read"

	// PermissionCatalogWrite allows creating surveys, sections and questions.
	PermissionCatalogWrite Permission = "catalog:write"

	// PermissionTemplatesRead allows listing and inspecting seed templates.
	PermissionTemplatesRead Permission = "templates:read"

	// PermissionSeedRun allows triggering seed runs.
	PermissionSeedRun Permission = "seed:run"

	// PermissionSeedRead allows reading seed run results and progress.
	PermissionSeedRead Permission = "seed:read"
)

// AllPermissions returns every permission code known to the system.
func AllPermissions() []Permission {
	return []Permission{
		PermissionCatalogRead,
		PermissionCatalogWrite,
		PermissionTemplatesRead,
		PermissionSeedRun,
		PermissionSeedRead,
	}
}

// IsValidPermission checks whether code is a known permission.
func IsValidPermission(code string) bool {
	for _, p := range AllPermissions() {
		if string(p) == code {
			return true
		}
	}
	return false
}
