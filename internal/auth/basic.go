package auth

import (
	"encoding/base64"
	"errors"
	"strings"
)

// HeaderName is the header the vendor expects its credential in.
const HeaderName = "Authorization"

// BasicHeader builds the Basic credential for an API key: the key is the
// user name and the password is empty.
func BasicHeader(key string) (string, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return "", errors.New("basic: api key is required")
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(k+":")), nil
}
