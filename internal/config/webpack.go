package config

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
)

// WebpackConfig is the subset of settings the front-end build reads.
type WebpackConfig struct {
	AppRoot                      string   `json:"APP_ROOT"`
	ArchesApplications           []string `json:"ARCHES_APPLICATIONS"`
	PublicServerAddress          string   `json:"PUBLIC_SERVER_ADDRESS"`
	RootDir                      string   `json:"ROOT_DIR"`
	StaticURL                    string   `json:"STATIC_URL"`
	WebpackDevelopmentServerPort int      `json:"WEBPACK_DEVELOPMENT_SERVER_PORT"`
}

// Webpack derives the front-end build configuration. Paths are absolute with
// symlinks resolved where they exist.
func Webpack(s Settings) WebpackConfig {
	apps := slices.Clone(s.ArchesApplications)
	if apps == nil {
		apps = []string{}
	}
	return WebpackConfig{
		AppRoot:                      realPath(s.AppRoot),
		ArchesApplications:           apps,
		PublicServerAddress:          s.PublicServerAddress,
		RootDir:                      realPath(s.RootDir),
		StaticURL:                    s.StaticURL,
		WebpackDevelopmentServerPort: s.WebpackDevelopmentServerPort,
	}
}

// WriteWebpack writes the front-end build configuration as one JSON object.
func WriteWebpack(w io.Writer, s Settings) error {
	if err := json.NewEncoder(w).Encode(Webpack(s)); err != nil {
		return fmt.Errorf("encode webpack config: %w", err)
	}
	return nil
}

func realPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
