package transport

import (
	"strings"
)

// DefaultBaseURL is the vendor's munki plugin endpoint.
const DefaultBaseURL = "https://a.simplemdm.com/munki/plugin"

// BaseURLEnv overrides DefaultBaseURL when set.
const BaseURLEnv = "SIMPLEMDM_BASE_URL"

// Resolve returns the URL a request is sent to. Relative identifiers are
// percent-encoded and joined to base; absolute targets pass through untouched.
func Resolve(base, target string, relative bool) string {
	if !relative {
		return target
	}
	return JoinURL(base, Quote(target))
}

// JoinURL joins base and an already-encoded path with exactly one slash.
func JoinURL(base, encoded string) string {
	encoded = strings.TrimLeft(encoded, "/")
	if base == "" {
		return encoded
	}
	return strings.TrimRight(base, "/") + "/" + encoded
}

const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_.-~/"

// Quote percent-encodes every byte of s except unreserved characters and '/'.
func Quote(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(unreserved, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}
