/*
Package site holds the optional settings and content that decorate a served
directory: the roulette.cfg file at the base and README.md intros shown on
listing pages.

roulette.cfg is TOML:

	# heading of listing pages
	title = "Visualizations"
	# Expires header for exact-file responses
	expires = "10m"
	# directory with listing.html, notfound.html, error.html overrides
	templates = "/etc/htmlroulette/templates"

	[headers]
	X-Frame-Options = "SAMEORIGIN"

The file is never served because it does not end in ".html".
*/
package site

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFile is the name of the configuration file at the base directory.
const ConfigFile = "roulette.cfg"

// DefaultTitle is the heading of listing pages when none is configured.
const DefaultTitle = "Visualizations"

// Config contains configuration data from the roulette.cfg file.
type Config struct {
	Title     string            `toml:"title"`
	Expires   Duration          `toml:"expires"`
	Headers   map[string]string `toml:"headers"`
	Templates string            `toml:"templates"`
}

// Load reads ConfigFile from fsys. It is not an error if the file does not
// exist; the defaults are returned instead.
func Load(fsys fs.FS) (*Config, error) {
	cfg := Config{Title: DefaultTitle}
	b, err := fs.ReadFile(fsys, ConfigFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("Cannot read config file: %w", err)
	}
	err = toml.Unmarshal(b, &cfg)
	if err != nil {
		return nil, fmt.Errorf("Cannot parse config file: %w", err)
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	return &cfg, nil
}
