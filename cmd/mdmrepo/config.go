package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/mdmrepo"
	"github.com/loykin/mdmrepo/internal/util"
	"gopkg.in/yaml.v3"
)

type RepoConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	Transport  string `mapstructure:"transport" yaml:"transport"` // native, curl
	CurlPath   string `mapstructure:"curl_path" yaml:"curl_path"`
	ConfigFile string `mapstructure:"config_file" yaml:"config_file"` // preferences plist holding the API key
	TempDir    string `mapstructure:"temp_dir" yaml:"temp_dir"`
}

type ClientConfig struct {
	Insecure      bool   `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxTLSVersion string `mapstructure:"max_tls_version" yaml:"max_tls_version"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
}

type ConfigDoc struct {
	Repo    RepoConfig    `mapstructure:"repo" yaml:"repo"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	// EnvFile is a dotenv file loaded before the credential is resolved.
	EnvFile string `mapstructure:"env_file" yaml:"env_file"`
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user; cleaned and validated above
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return yaml.NewDecoder(f).Decode(c)
}

// Overlay decodes flat overrides (viper keys such as "repo.base_url") on top
// of the loaded document. Empty values leave the document untouched.
func (c *ConfigDoc) Overlay(settings map[string]interface{}) error {
	nested := map[string]interface{}{}
	for k, v := range settings {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		section, key, found := strings.Cut(k, ".")
		if !found {
			nested[k] = v
			continue
		}
		m, _ := nested[section].(map[string]interface{})
		if m == nil {
			m = map[string]interface{}{}
			nested[section] = m
		}
		m[key] = v
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return err
	}
	return dec.Decode(nested)
}

func (c *ConfigDoc) parseLogLevel() (mdmrepo.LogLevel, error) {
	switch util.TrimAndLower(c.Logging.Level) {
	case "error":
		return mdmrepo.LogLevelError, nil
	case "warn", "warning":
		return mdmrepo.LogLevelWarn, nil
	case "info", "":
		return mdmrepo.LogLevelInfo, nil
	case "debug":
		return mdmrepo.LogLevelDebug, nil
	default:
		return mdmrepo.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings
func (c *ConfigDoc) SetupLogging() (*mdmrepo.Logger, error) {
	level, err := c.parseLogLevel()
	if err != nil {
		return nil, err
	}
	var logger *mdmrepo.Logger
	switch util.TrimAndLower(c.Logging.Format) {
	case "json":
		logger = mdmrepo.NewJSONLogger(level)
	case "color", "colour":
		logger = mdmrepo.NewColorLogger(level)
	case "text", "":
		logger = mdmrepo.NewLogger(level)
	default:
		return nil, fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}
	masking := true
	if c.Logging.MaskSensitive != nil {
		masking = *c.Logging.MaskSensitive
	}
	logger.EnableMasking(masking)
	mdmrepo.EnableMasking(masking)
	mdmrepo.SetDefaultLogger(logger)
	return logger, nil
}

func parseTLSVersion(s string) (uint16, error) {
	switch util.TrimAndLower(s) {
	case "":
		return 0, nil
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12, nil
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported tls version: %s (valid: 1.2, 1.3)", s)
	}
}

// TLSConfig returns nil when the client section asks for nothing special.
func (c *ConfigDoc) TLSConfig() (*tls.Config, error) {
	minV, err := parseTLSVersion(c.Client.MinTLSVersion)
	if err != nil {
		return nil, err
	}
	maxV, err := parseTLSVersion(c.Client.MaxTLSVersion)
	if err != nil {
		return nil, err
	}
	if minV == 0 && maxV == 0 && !c.Client.Insecure {
		return nil, nil
	}
	// #nosec G402 -- InsecureSkipVerify is an explicit opt-in for test endpoints
	return &tls.Config{MinVersion: minV, MaxVersion: maxV, InsecureSkipVerify: c.Client.Insecure}, nil
}

// Options converts the document into library options.
func (c *ConfigDoc) Options(logger *mdmrepo.Logger) (mdmrepo.Options, error) {
	tlsCfg, err := c.TLSConfig()
	if err != nil {
		return mdmrepo.Options{}, err
	}
	repo := c.Repo
	util.TrimStructFields(&repo)
	return mdmrepo.Options{
		BaseURL:    repo.BaseURL,
		ConfigFile: repo.ConfigFile,
		Transport:  util.TrimWithDefault(util.TrimAndLower(repo.Transport), mdmrepo.TransportNative),
		CurlPath:   repo.CurlPath,
		TempDir:    repo.TempDir,
		TLSConfig:  tlsCfg,
		Logger:     logger,
	}, nil
}
