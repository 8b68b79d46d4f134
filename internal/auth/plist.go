package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/loykin/mdmrepo/internal/common"
	"howett.net/plist"
)

// fileConfig is the subset of the preferences plist the plugin reads.
type fileConfig struct {
	Key string `plist:"key"`
}

// PlistSource reads the key field from a property list file. A missing or
// unreadable file is skipped quietly; a malformed one is skipped with a warning.
type PlistSource struct {
	Path string
}

func (s PlistSource) Name() string { return "config_file" }

func (s PlistSource) APIKey() (string, error) {
	if strings.TrimSpace(s.Path) == "" {
		return "", ErrNoCredential
	}
	// #nosec G304 -- path is the fixed preferences location or an explicit override
	data, err := os.ReadFile(filepath.Clean(s.Path))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			common.LogDebug("config file unreadable", "path", s.Path, "error", err)
		}
		return "", ErrNoCredential
	}
	var cfg fileConfig
	if _, err := plist.Unmarshal(data, &cfg); err != nil {
		common.LogWarn("config file malformed, ignoring", "path", s.Path, "error", err)
		return "", ErrNoCredential
	}
	if k := strings.TrimSpace(cfg.Key); k != "" {
		return k, nil
	}
	return "", ErrNoCredential
}
