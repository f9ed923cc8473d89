package config

import "slices"

// DeploymentWarnings lists settings that are fine for local development but
// should not reach a public deployment.
func DeploymentWarnings(s Settings) []string {
	var warnings []string

	if s.SecretKey == insecureSecretKey {
		warnings = append(warnings, "SECRET_KEY is the development fallback, set DJANGO_SECRET_KEY")
	}
	if s.Debug {
		warnings = append(warnings, "DEBUG is enabled")
	}
	if slices.Contains(s.AllowedHosts, "*") {
		warnings = append(warnings, "ALLOWED_HOSTS accepts any host, set DOMAIN_NAMES")
	}
	if auth := s.ElasticsearchConnectionOptions.BasicAuth; len(auth) == 2 && auth[1] == defaultESPassword {
		warnings = append(warnings, "search cluster uses the default password")
	}

	return warnings
}
