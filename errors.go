package mdmrepo

import (
	"errors"
	"fmt"

	"github.com/loykin/mdmrepo/internal/auth"
	"github.com/loykin/mdmrepo/internal/transport"
)

// ConfigurationError reports an unusable setup, e.g. no curl binary.
type ConfigurationError = transport.ConfigurationError

// TransportError reports a failed exchange or a final status outside 1xx/2xx/3xx.
type TransportError = transport.TransportError

// CredentialError reports that no API key could be obtained.
type CredentialError = auth.CredentialError

// ErrUnsupportedOperation matches any *UnsupportedOperationError via errors.Is.
var ErrUnsupportedOperation = errors.New("operation not supported by remote repository")

// UnsupportedOperationError is returned for operations the vendor does not offer.
type UnsupportedOperationError struct {
	Op         string
	Identifier string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Identifier, ErrUnsupportedOperation)
}

func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}
