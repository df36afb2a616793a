package service

import (
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

// NavigationService resolves the destination menu for a role.
type NavigationService struct {
	logger *zap.Logger
}

// NewNavigationService creates an instance of NavigationService.
func NewNavigationService(logger *zap.Logger) *NavigationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NavigationService{logger: logger}
}

// Entries returns the navigation entries visible to the role.
func (s *NavigationService) Entries(role models.UserRole) []models.NavigationEntry {
	return models.FilterNavigation(role)
}

// CanAccess reports whether the role may open the given route. Unknown
// routes are denied rather than allowed.
func (s *NavigationService) CanAccess(role models.UserRole, route string) bool {
	if route == models.LandingRoute {
		return true
	}
	for _, entry := range models.NavigationEntries {
		if entry.Route == route {
			return role.In(entry.Roles...)
		}
	}
	return false
}
