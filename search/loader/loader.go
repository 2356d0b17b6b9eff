package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/noelzubin/site_search/search"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single index fetch.
const DefaultTimeout = 10 * time.Second

// Loader fetches a remote document index.
type Loader struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for the fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithTimeout bounds the fetch. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns a Loader with the given options applied.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches url and decodes it as an index.
//
// Every failure (transport error, timeout, non-2xx status, body that is
// not a JSON array) wraps search.ErrIndexUnavailable. Individual entries
// are decoded permissively and never fail the load.
func (l *Loader) Load(ctx context.Context, url string) (search.Index, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", search.ErrIndexUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", search.ErrIndexUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch %s: HTTP %d", search.ErrIndexUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", search.ErrIndexUnavailable, url, err)
	}

	index, err := l.decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", search.ErrIndexUnavailable, url, err)
	}

	l.logger.Debug("index loaded", zap.String("url", url), zap.Int("documents", len(index)))
	return index, nil
}

// decode parses the top-level array strictly and each entry leniently.
func (l *Loader) decode(body []byte) (search.Index, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, err
	}

	index := make(search.Index, 0, len(entries))
	for i, raw := range entries {
		doc, ok := decodeDocument(raw)
		if !ok {
			l.logger.Warn("skipping malformed index entry", zap.Int("position", i))
			continue
		}
		index = append(index, doc)
	}
	return index, nil
}

// decodeDocument reads an index entry field by field. Missing or
// wrongly typed fields fall back to their zero value.
func decodeDocument(raw json.RawMessage) (search.Document, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return search.Document{}, false
	}

	return search.Document{
		URI:        stringField(fields["uri"]),
		Title:      stringField(fields["title"]),
		Content:    stringField(fields["content"]),
		Tags:       listField(fields["tags"]),
		Categories: listField(fields["categories"]),
	}, true
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// listField accepts an array of strings or a single string. Non-string
// array members and blank values are dropped.
func listField(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var single string
	if json.Unmarshal(raw, &single) == nil {
		if strings.TrimSpace(single) == "" {
			return []string{}
		}
		return []string{single}
	}

	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return []string{}
	}

	values := lo.Map(items, func(item json.RawMessage, _ int) string {
		return stringField(item)
	})
	return lo.Filter(values, func(v string, _ int) bool {
		return strings.TrimSpace(v) != ""
	})
}
