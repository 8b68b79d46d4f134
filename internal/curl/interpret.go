package curl

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/loykin/mdmrepo/internal/header"
	"github.com/loykin/mdmrepo/internal/transport"
)

// Result is the captured output of one curl process.
type Result struct {
	Stdout   []byte
	Stderr   string
	ExitCode int
}

// Interpret turns a finished curl process into the final hop's headers and
// the response body. A nonzero exit code or a final status outside
// 1xx/2xx/3xx yields *transport.TransportError and no headers.
func Interpret(res Result, url string) (header.Map, []byte, error) {
	if res.ExitCode != 0 {
		return nil, nil, &transport.TransportError{
			Message: fmt.Sprintf("curl failure: %s (exit code %d)", ErrorMessage(res.Stderr), res.ExitCode),
		}
	}
	hdrs := ParseHeaders(res.Stderr, url)
	if !hdrs.Successful() {
		return nil, nil, transport.StatusError(hdrs[header.ResultCode], hdrs.Code(), res.Stdout)
	}
	return hdrs, res.Stdout, nil
}

// ErrorMessage extracts curl's own error text from the last stderr line,
// e.g. "curl: (6) Could not resolve host: x" gives "Could not resolve host: x".
// It returns "" when the line has fewer than three tokens.
func ErrorMessage(stderr string) string {
	lines := strings.Split(strings.TrimRight(stderr, "\r\n"), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	parts := strings.Fields(last)
	if len(parts) < 3 {
		return ""
	}
	// Skip the first two tokens but keep the remainder's inner spacing.
	rest := last
	for i := 0; i < 2; i++ {
		rest = strings.TrimLeft(rest, " \t")
		if j := strings.IndexAny(rest, " \t"); j >= 0 {
			rest = rest[j:]
		}
	}
	return strings.TrimSpace(rest)
}

// ParseHeaders scans curl's verbose trace and returns the header map of the
// final hop. Redirect hops are collapsed: only http_redirected survives them.
func ParseHeaders(trace, url string) header.Map {
	hdrs := header.New()
	ftp := strings.HasPrefix(strings.ToLower(url), "ftp://")
	sc := bufio.NewScanner(strings.NewReader(trace))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line, ok := traceLine(sc.Text())
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(line, "HTTP/"):
			parseStatusLine(line, hdrs)
		case strings.Contains(line, ": "):
			parseField(line, hdrs)
		case ftp && line != "":
			parseFTPReply(line, hdrs)
		case line == "":
			hdrs.EndHop()
		}
	}
	return hdrs
}

// traceLine normalizes one line of curl's verbose output. Response lines
// carry a "< " marker which is removed; request lines, informational lines
// and data markers are dropped. Unmarked lines pass through unchanged.
func traceLine(raw string) (string, bool) {
	line := strings.TrimRight(raw, "\r")
	switch {
	case strings.HasPrefix(line, "< "):
		return line[2:], true
	case line == "<":
		return "", true
	case strings.HasPrefix(line, "> "), line == ">",
		strings.HasPrefix(line, "* "), line == "*",
		strings.HasPrefix(line, "{ "), strings.HasPrefix(line, "} "):
		return "", false
	}
	return line, true
}

func parseStatusLine(line string, hdrs header.Map) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return
	}
	desc := ""
	if len(parts) == 3 {
		desc = strings.TrimSpace(parts[2])
	}
	hdrs.SetStatus(strings.TrimSpace(parts[1]), desc)
}

func parseField(line string, hdrs header.Map) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
	name := strings.TrimRight(parts[0], ":")
	value := ""
	if len(parts) == 2 {
		value = strings.TrimSpace(parts[1])
	}
	hdrs.Set(name, value)
}

func parseFTPReply(line string, hdrs header.Map) {
	switch {
	case strings.HasPrefix(line, "213"):
		_, size, _ := strings.Cut(line, " ")
		hdrs.Set("content-length", size)
	case strings.HasPrefix(line, "55"):
		hdrs.SetStatus("404", line)
	case strings.HasPrefix(line, "150"), strings.HasPrefix(line, "125"):
		hdrs.SetStatus("200", line)
	}
}
