package domain

// Manifest is the static descriptor of the marketplace service itself.
type Manifest struct {
	SchemaVersion string       `json:"schema_version"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Auth          ManifestAuth `json:"auth"`
	API           ManifestAPI  `json:"api"`
	LogoURL       string       `json:"logo_url"`
	ContactEmail  string       `json:"contact_email"`
	LegalInfoURL  string       `json:"legal_info_url"`
}

// ManifestAuth describes how clients authenticate.
type ManifestAuth struct {
	Type         string `json:"type"`
	Instructions string `json:"instructions"`
}

// ManifestAPI points at the API description document.
type ManifestAPI struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
