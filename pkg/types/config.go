package types

import "time"

// FetcherKind selects how page content is retrieved.
type FetcherKind string

const (
	FetcherHTTP    FetcherKind = "http"
	FetcherBrowser FetcherKind = "browser"
)

// ConverterKind selects the HTML-to-Markdown backend.
type ConverterKind string

const (
	ConverterHTML       ConverterKind = "html"
	ConverterMarkitdown ConverterKind = "markitdown"
)

// HTTPConfig holds shared HTTP settings used by every component that makes
// network requests.
type HTTPConfig struct {
	// Timeout bounds a single page fetch (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent with page fetches and API calls.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 from the bookmark API.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// RunConfig is the immutable configuration for one clipping run. It is
// assembled once at process start and passed by value to every component.
type RunConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ConsumerKey and ConsumerSecret identify the registered OAuth consumer.
	ConsumerKey    string `json:"-" yaml:"consumer_key" mapstructure:"consumer_key"`
	ConsumerSecret string `json:"-" yaml:"consumer_secret" mapstructure:"consumer_secret"`

	// SaveDir is where Markdown artifacts are written. Empty means preview
	// mode: artifacts are printed to stdout instead.
	SaveDir string `json:"save_dir" yaml:"save_dir" mapstructure:"save_dir"`

	// Tag filters the bookmarks to clip.
	Tag string `json:"tag" yaml:"tag" mapstructure:"tag"`

	// DryRun performs fetch and convert but suppresses file writes and
	// remote deletes.
	DryRun bool `json:"dryrun" yaml:"dryrun" mapstructure:"dryrun"`

	// DeleteBookmark removes each processed bookmark from the service.
	DeleteBookmark bool `json:"delete_bookmark" yaml:"delete_bookmark" mapstructure:"delete_bookmark"`

	// MaxItemsWithoutDelete caps how many bookmarks are attempted when
	// DeleteBookmark is false. Zero disables the cap.
	MaxItemsWithoutDelete int `json:"max_items_without_delete" yaml:"max_items_without_delete" mapstructure:"max_items_without_delete"`

	// TokenFile is the path of the cached access credentials.
	TokenFile string `json:"token_file" yaml:"token_file" mapstructure:"token_file"`

	// HistoryDB is the SQLite ledger path. Empty disables the ledger.
	HistoryDB string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`

	Fetcher   FetcherKind   `json:"fetcher" yaml:"fetcher" mapstructure:"fetcher"`
	Converter ConverterKind `json:"converter" yaml:"converter" mapstructure:"converter"`

	// Frontmatter prepends a YAML header with bookmark metadata to each artifact.
	Frontmatter bool `json:"frontmatter" yaml:"frontmatter" mapstructure:"frontmatter"`
}

// Preview reports whether artifacts go to stdout rather than SaveDir.
func (c RunConfig) Preview() bool {
	return c.SaveDir == ""
}

// ItemLimit returns the maximum number of eligible bookmarks the pipeline
// may attempt, or 0 for no limit.
func (c RunConfig) ItemLimit() int {
	if c.DeleteBookmark || c.MaxItemsWithoutDelete <= 0 {
		return 0
	}
	return c.MaxItemsWithoutDelete
}
