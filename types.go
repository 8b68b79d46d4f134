package mdmrepo

import (
	"github.com/loykin/mdmrepo/internal/auth"
	"github.com/loykin/mdmrepo/internal/common"
	"github.com/loykin/mdmrepo/internal/header"
	"github.com/loykin/mdmrepo/internal/transport"
)

// Re-export commonly used types for public API

// Transport executes one logical request. Custom implementations can be
// passed through Options.Client.
type Transport = transport.Transport

// Request describes one call handed to a Transport.
type Request = transport.Request

// Response is what a Transport returns on success.
type Response = transport.Response

// HeaderMap is the final hop's parsed response headers.
type HeaderMap = header.Map

// CredentialSource yields the vendor API key.
type CredentialSource = auth.Source

// Logger is the structured logger used across the module.
type Logger = common.Logger

// LogLevel represents logging verbosity levels.
type LogLevel = common.LogLevel

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

// NewLogger creates a text logger on stderr.
func NewLogger(level LogLevel) *Logger { return common.NewLogger(level) }

// NewJSONLogger creates a JSON logger on stderr.
func NewJSONLogger(level LogLevel) *Logger { return common.NewJSONLogger(level) }

// NewColorLogger creates a colorized logger on stderr.
func NewColorLogger(level LogLevel) *Logger { return common.NewColorLogger(level) }

// SetDefaultLogger replaces the package-wide logger.
func SetDefaultLogger(l *Logger) { common.SetDefaultLogger(l) }

// GetLogger returns the package-wide logger.
func GetLogger() *Logger { return common.GetLogger() }

// EnableMasking toggles masking of credentials in log output.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }

// MaskSensitiveData masks credentials in input using the global masker.
func MaskSensitiveData(input string) string { return common.MaskSensitiveData(input) }
