package curl

import (
	"github.com/loykin/mdmrepo/internal/transport"
)

// Fixed flags: compressed transfer, follow redirects, protocol trace on stderr.
var baseFlags = []string{"--compressed", "--location", "--verbose"}

// Command is everything needed to build one curl invocation.
type Command struct {
	Target   string
	Relative bool
	Headers  []transport.Header
	Form     []transport.Field
	// Extra is appended verbatim after headers and form fields.
	Extra []string
}

// Builder turns a Command into the argument vector for the curl binary.
type Builder struct {
	Binary  string
	BaseURL string
}

// URL returns the resolved request target for cmd.
func (b Builder) URL(cmd Command) string {
	return transport.Resolve(b.BaseURL, cmd.Target, cmd.Relative)
}

// Build returns the ordered argument vector, binary path first and URL last.
// Form values are passed as-is; callers must keep curl's reserved
// characters (';', '<', '@') out of them.
func (b Builder) Build(cmd Command) []string {
	argv := make([]string, 0, 1+len(baseFlags)+2*len(cmd.Headers)+2*len(cmd.Form)+len(cmd.Extra)+1)
	argv = append(argv, b.Binary)
	argv = append(argv, baseFlags...)
	for _, h := range cmd.Headers {
		argv = append(argv, "--header", h.Name+": "+h.Value)
	}
	for _, f := range cmd.Form {
		argv = append(argv, "-F", f.Name+"="+f.Value)
	}
	argv = append(argv, cmd.Extra...)
	argv = append(argv, b.URL(cmd))
	return argv
}

// ExtraArgs translates the method and body of req into curl flags.
// An explicit method becomes -X; an inline body -d; a body file -T.
func ExtraArgs(req transport.Request) []string {
	var extra []string
	if req.Method != "" {
		extra = append(extra, "-X", req.EffectiveMethod())
	}
	switch {
	case req.BodyFile != "":
		extra = append(extra, "-T", req.BodyFile)
	case len(req.Body) > 0:
		extra = append(extra, "-d", string(req.Body))
	}
	return extra
}
