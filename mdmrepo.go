package mdmrepo

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/loykin/mdmrepo/internal/auth"
	"github.com/loykin/mdmrepo/internal/common"
	"github.com/loykin/mdmrepo/internal/curl"
	"github.com/loykin/mdmrepo/internal/httpc"
	"github.com/loykin/mdmrepo/internal/transport"
	"github.com/tidwall/gjson"
)

// InlineBodyLimit is the largest body sent inline; anything bigger is
// staged in a temporary file and streamed.
const InlineBodyLimit = 1024

// Remote endpoints of the pre-signed upload choreography.
const (
	CreateURLPath      = "pkgs/create_url"
	CreateCallbackPath = "pkgs/create_callback"
)

const (
	pkgsPrefix     = "pkgs/"
	pkgsinfoPrefix = "pkgsinfo/"
)

// Transport names accepted by Options.Transport.
const (
	TransportNative = "native"
	TransportCurl   = "curl"
)

// Repository is the operation set a packaging tool expects from a repo plugin.
type Repository interface {
	ItemList(ctx context.Context, kind string) ([]string, error)
	Get(ctx context.Context, identifier string) ([]byte, error)
	Put(ctx context.Context, identifier string, content []byte) error
	PutFromLocalFile(ctx context.Context, identifier, localPath string) error
	Delete(ctx context.Context, identifier string) error
	MakeCatalogs(ctx context.Context, opts CatalogOptions) ([]string, error)
}

var _ Repository = (*Repo)(nil)

// CatalogOptions mirrors the host's makecatalogs flags. The remote side
// builds catalogs itself, so they are accepted and ignored.
type CatalogOptions struct {
	SkipPkgCheck bool
	Force        bool
}

// Options configures New.
type Options struct {
	// BaseURL defaults to $SIMPLEMDM_BASE_URL, then the vendor endpoint.
	BaseURL string
	// APIKey bypasses credential lookup when set.
	APIKey string
	// ConfigFile overrides the preferences plist path.
	ConfigFile string
	// CredentialSources replaces the default env → plist → prompt chain.
	CredentialSources []CredentialSource
	// Transport selects "native" (default) or "curl".
	Transport string
	// CurlPath overrides curl discovery for the curl transport.
	CurlPath  string
	TLSConfig *tls.Config
	// TempDir holds staged request bodies; defaults to os.TempDir().
	TempDir string
	Logger  *Logger
	// Client replaces the transport entirely.
	Client Transport
}

// Repo stores repository items on the vendor's API.
type Repo struct {
	client     transport.Transport
	authHeader string
	baseURL    string
	tempDir    string
	logger     *common.Logger
}

// New resolves the credential once and builds the selected transport.
func New(opts Options) (*Repo, error) {
	logger := opts.Logger
	if logger == nil {
		logger = common.GetLogger()
	}
	logger = logger.WithComponent("repo")

	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv(transport.BaseURLEnv))
	}
	if baseURL == "" {
		baseURL = transport.DefaultBaseURL
	}

	sources := opts.CredentialSources
	if strings.TrimSpace(opts.APIKey) != "" {
		sources = []CredentialSource{auth.StaticSource(opts.APIKey)}
	} else if len(sources) == 0 {
		sources = auth.DefaultSources(opts.ConfigFile)
	}
	authHeader, err := auth.Resolve(sources)
	if err != nil {
		return nil, err
	}

	client := opts.Client
	if client == nil {
		switch strings.ToLower(strings.TrimSpace(opts.Transport)) {
		case "", TransportNative:
			client = httpc.New(httpc.Options{BaseURL: baseURL, TLSConfig: opts.TLSConfig, Logger: logger})
		case TransportCurl:
			client, err = curl.New(curl.Options{CurlPath: opts.CurlPath, BaseURL: baseURL, Logger: logger})
			if err != nil {
				return nil, err
			}
		default:
			return nil, &ConfigurationError{Message: fmt.Sprintf("unknown transport %q (valid: native, curl)", opts.Transport)}
		}
	}

	logger.Info("using remote repository; the configured repo URL is ignored", "base_url", baseURL)
	return &Repo{
		client:     client,
		authHeader: authHeader,
		baseURL:    baseURL,
		tempDir:    opts.TempDir,
		logger:     logger,
	}, nil
}

// BaseURL returns the endpoint relative identifiers are resolved against.
func (r *Repo) BaseURL() string { return r.baseURL }

func (r *Repo) opLogger(op, identifier string) *common.Logger {
	return r.logger.WithOperation(op, uuid.NewString()).WithResource(identifier)
}

// vendor marks req as a call to the vendor API: relative target, with auth.
func (r *Repo) vendor(req transport.Request) transport.Request {
	req.Relative = true
	return req.WithHeader(auth.HeaderName, r.authHeader)
}

// ItemList returns the identifiers of every item of kind, e.g. "catalogs".
func (r *Repo) ItemList(ctx context.Context, kind string) ([]string, error) {
	log := r.opLogger("itemlist", kind)
	resp, err := r.client.Do(ctx, r.vendor(transport.Request{Target: kind}))
	if err != nil {
		log.Error("listing failed", "error", err)
		return nil, fmt.Errorf("itemlist %s: %w", kind, err)
	}
	items, err := parseItemList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("itemlist %s: %w", kind, err)
	}
	log.Debug("listed items", "count", len(items))
	return items, nil
}

// parseItemList accepts a JSON array of strings or of objects carrying a
// name field.
func parseItemList(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("item list is not valid JSON")
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("item list is not a JSON array")
	}
	items := []string{}
	var bad error
	parsed.ForEach(func(_, v gjson.Result) bool {
		switch {
		case v.Type == gjson.String:
			items = append(items, v.String())
		case v.IsObject() && v.Get("name").Exists():
			items = append(items, v.Get("name").String())
		default:
			bad = fmt.Errorf("unexpected item list entry: %s", v.Raw)
			return false
		}
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return items, nil
}

// Get returns the stored bytes of identifier.
func (r *Repo) Get(ctx context.Context, identifier string) ([]byte, error) {
	log := r.opLogger("get", identifier)
	resp, err := r.client.Do(ctx, r.vendor(transport.Request{Target: identifier}))
	if err != nil {
		log.Error("get failed", "error", err)
		return nil, fmt.Errorf("get %s: %w", identifier, err)
	}
	log.Debug("fetched item", "bytes", len(resp.Body))
	return resp.Body, nil
}

// Put stores content under identifier. Bodies above InlineBodyLimit, or
// that cannot be passed inline, are staged in a temporary file that is
// removed once the call returns.
func (r *Repo) Put(ctx context.Context, identifier string, content []byte) error {
	log := r.opLogger("put", identifier)
	req := transport.Request{Target: identifier, Method: http.MethodPost}
	if strings.HasPrefix(identifier, pkgsinfoPrefix) {
		req = req.WithHeader("Content-Type", "application/xml")
	}

	if mustStage(content) {
		tmp, err := r.stageBody(content)
		if err != nil {
			return fmt.Errorf("put %s: %w", identifier, err)
		}
		defer r.removeStaged(tmp)
		req.BodyFile = tmp
	} else {
		req.Body = content
	}

	if _, err := r.client.Do(ctx, r.vendor(req)); err != nil {
		log.Error("put failed", "error", err)
		return fmt.Errorf("put %s: %w", identifier, err)
	}
	log.Info("stored item", "bytes", len(content), "streamed", req.BodyFile != "")
	return nil
}

// mustStage reports whether content has to be streamed from a file. Besides
// large bodies this covers content curl would read as "@file" and content
// holding NUL bytes, which cannot travel as a process argument.
func mustStage(content []byte) bool {
	return len(content) > InlineBodyLimit ||
		bytes.HasPrefix(content, []byte("@")) ||
		bytes.IndexByte(content, 0) >= 0
}

func (r *Repo) stageBody(content []byte) (string, error) {
	f, err := os.CreateTemp(r.tempDir, "mdmrepo-body-*")
	if err != nil {
		return "", fmt.Errorf("stage body: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("stage body: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("stage body: %w", err)
	}
	return name, nil
}

func (r *Repo) removeStaged(name string) {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("could not remove staged body", "path", name, "error", err)
	}
}

// PutFromLocalFile uploads the file at localPath as identifier. Packages go
// through a pre-signed URL: request the URL, PUT the bytes there without
// vendor credentials, then confirm with a callback. A failed step does not
// undo the steps before it.
func (r *Repo) PutFromLocalFile(ctx context.Context, identifier, localPath string) error {
	log := r.opLogger("put_from_local_file", identifier)
	if _, err := os.Stat(localPath); err != nil {
		return fmt.Errorf("put_from_local_file %s: %w", identifier, err)
	}

	if !strings.HasPrefix(identifier, pkgsPrefix) {
		req := transport.Request{Target: identifier, Method: http.MethodPost, BodyFile: localPath}
		req = req.WithHeader("Content-Type", "application/octet-stream")
		if _, err := r.client.Do(ctx, r.vendor(req)); err != nil {
			log.Error("upload failed", "error", err)
			return fmt.Errorf("put_from_local_file %s: %w", identifier, err)
		}
		log.Info("uploaded item", "path", localPath)
		return nil
	}

	filename := strings.TrimPrefix(identifier, pkgsPrefix)

	resp, err := r.client.Do(ctx, r.vendor(transport.Request{
		Target: CreateURLPath,
		Form:   []transport.Field{{Name: "filename", Value: filename}},
	}))
	if err != nil {
		log.Error("requesting upload url failed", "error", err)
		return fmt.Errorf("put_from_local_file %s: create upload url: %w", identifier, err)
	}
	uploadURL := strings.TrimSpace(string(resp.Body))
	if uploadURL == "" {
		return fmt.Errorf("put_from_local_file %s: create upload url: empty response", identifier)
	}
	log.Debug("received upload url", "upload_url", uploadURL)

	upload := transport.Request{Target: uploadURL, Method: http.MethodPut, BodyFile: localPath}
	upload = upload.WithHeader("Content-Type", "application/octet-stream")
	if _, err := r.client.Do(ctx, upload); err != nil {
		log.Error("uploading package failed", "error", err)
		return fmt.Errorf("put_from_local_file %s: upload: %w", identifier, err)
	}

	if _, err := r.client.Do(ctx, r.vendor(transport.Request{
		Target: CreateCallbackPath,
		Form: []transport.Field{
			{Name: "filename", Value: filename},
			{Name: "upload_url", Value: uploadURL},
		},
	})); err != nil {
		log.Error("upload callback failed", "error", err)
		return fmt.Errorf("put_from_local_file %s: callback: %w", identifier, err)
	}
	log.Info("uploaded package", "path", localPath, "filename", path.Base(filename))
	return nil
}

// Delete is not offered by the vendor and always fails with
// ErrUnsupportedOperation.
func (r *Repo) Delete(_ context.Context, identifier string) error {
	r.opLogger("delete", identifier).Warn("delete is unsupported by the remote repository")
	return &UnsupportedOperationError{Op: "delete", Identifier: identifier}
}

// MakeCatalogs does nothing: the vendor rebuilds catalogs on its side.
func (r *Repo) MakeCatalogs(_ context.Context, _ CatalogOptions) ([]string, error) {
	r.logger.Debug("makecatalogs skipped; catalogs are built remotely")
	return []string{}, nil
}
