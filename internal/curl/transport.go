package curl

import (
	"context"
	"strings"

	"github.com/loykin/mdmrepo/internal/common"
	"github.com/loykin/mdmrepo/internal/transport"
)

var _ transport.Transport = (*Transport)(nil)

// Options configures a curl-backed Transport.
type Options struct {
	// CurlPath overrides binary discovery when it names an executable.
	CurlPath string
	BaseURL  string
	// Runner defaults to ExecRunner.
	Runner Runner
	Logger *common.Logger
}

// Transport sends requests by shelling out to curl and reading its trace.
type Transport struct {
	builder Builder
	runner  Runner
	logger  *common.Logger
}

// New locates the curl binary and returns a ready Transport.
func New(opts Options) (*Transport, error) {
	bin, err := Locate(opts.CurlPath)
	if err != nil {
		return nil, err
	}
	return NewWithBinary(bin, opts), nil
}

// NewWithBinary skips discovery and uses bin as the curl executable.
func NewWithBinary(bin string, opts Options) *Transport {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = common.GetLogger()
	}
	base := opts.BaseURL
	if base == "" {
		base = transport.DefaultBaseURL
	}
	return &Transport{
		builder: Builder{Binary: bin, BaseURL: base},
		runner:  runner,
		logger:  logger.WithComponent("curl"),
	}
}

// Binary returns the curl executable in use.
func (t *Transport) Binary() string { return t.builder.Binary }

// Do builds the argument vector for req, runs curl once and interprets the result.
func (t *Transport) Do(ctx context.Context, req transport.Request) (*transport.Response, error) {
	cmd := Command{
		Target:   req.Target,
		Relative: req.Relative,
		Headers:  req.Headers,
		Form:     req.Form,
		Extra:    ExtraArgs(req),
	}
	url := t.builder.URL(cmd)
	argv := t.builder.Build(cmd)
	log := t.logger.WithRequest(req.EffectiveMethod(), url)
	log.Debug("running curl", "argv", common.MaskSensitiveData(strings.Join(argv, " ")))

	res, err := t.runner.Run(ctx, argv)
	if err != nil {
		log.Error("curl did not start", "error", err)
		return nil, err
	}
	hdrs, body, err := Interpret(res, url)
	if err != nil {
		log.Debug("curl request failed", "exit_code", res.ExitCode, "error", err)
		return nil, err
	}
	log.Debug("curl request completed", "status", hdrs.Code(), "bytes", len(body))
	return &transport.Response{Headers: hdrs, Body: body}, nil
}
