package service

import "github.com/xiaot623/gogo/marketplace/internal/domain"

const (
	manifestName         = "marketplace"
	manifestDescription  = "A marketplace for discovering and executing AI agents"
	manifestContactEmail = "support@agentx.ai"
)

// GetManifest describes the marketplace for automated clients. URLs are built
// from the configured base URL.
func (s *Service) GetManifest() domain.Manifest {
	base := s.config.BaseURL
	return domain.Manifest{
		SchemaVersion: "v1",
		Name:          manifestName,
		Description:   manifestDescription,
		Auth: domain.ManifestAuth{
			Type:         "api_key",
			Instructions: "Provide your API key in the X-API-Key header",
		},
		API: domain.ManifestAPI{
			Type: "openapi",
			URL:  base + "/openapi.json",
		},
		LogoURL:      base + "/static/logo.png",
		ContactEmail: manifestContactEmail,
		LegalInfoURL: base + "/legal",
	}
}
