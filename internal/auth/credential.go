package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/loykin/mdmrepo/internal/common"
)

// APIKeyEnv names the environment variable holding the vendor API key.
const APIKeyEnv = "SIMPLEMDM_API_KEY"

// DefaultConfigFile is the property list consulted when the env var is unset.
const DefaultConfigFile = "/Library/Preferences/com.simplemdm.munki.plist"

// ErrNoCredential is returned by a Source that has nothing to offer.
// Resolve moves on to the next source when it sees it.
var ErrNoCredential = errors.New("no credential")

// CredentialError reports that no source produced an API key.
type CredentialError struct {
	Message string
	Err     error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential error: %s: %v", e.Message, e.Err)
	}
	return "credential error: " + e.Message
}

func (e *CredentialError) Unwrap() error { return e.Err }

// Source yields an API key or ErrNoCredential.
type Source interface {
	Name() string
	APIKey() (string, error)
}

// EnvSource reads the key from an environment variable.
type EnvSource struct {
	Var    string
	Lookup func(string) (string, bool)
}

func (s EnvSource) Name() string { return "env" }

func (s EnvSource) APIKey() (string, error) {
	lookup := s.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	name := s.Var
	if name == "" {
		name = APIKeyEnv
	}
	if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return "", ErrNoCredential
}

// StaticSource returns a fixed key, used when the caller already has one.
type StaticSource string

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) APIKey() (string, error) {
	if k := strings.TrimSpace(string(s)); k != "" {
		return k, nil
	}
	return "", ErrNoCredential
}

// DefaultSources is the lookup order: environment, config file, prompt.
func DefaultSources(configFile string) []Source {
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	return []Source{
		EnvSource{Var: APIKeyEnv},
		PlistSource{Path: configFile},
		NewTerminalPrompt(),
	}
}

// Resolve walks sources in order and returns the Authorization header value
// for the first key found. It is meant to run once per client.
func Resolve(sources []Source) (string, error) {
	logger := common.GetLogger().WithComponent("auth")
	for _, src := range sources {
		key, err := src.APIKey()
		if errors.Is(err, ErrNoCredential) {
			logger.Debug("credential source had no key", "source", src.Name())
			continue
		}
		if err != nil {
			return "", &CredentialError{Message: "source " + src.Name(), Err: err}
		}
		logger.Debug("credential resolved", "source", src.Name())
		return BasicHeader(key)
	}
	return "", &CredentialError{Message: "no API key supplied and no prompt available"}
}
