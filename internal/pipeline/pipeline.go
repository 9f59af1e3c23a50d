// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one clipping run: obtain credentials, list the
// tagged bookmarks, then fetch, convert, archive and delete each one in
// order. Failures on one bookmark are logged and counted; only credential
// and listing failures abort the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/pdiddy/hatebu-clipper/internal/convert"
	"github.com/pdiddy/hatebu-clipper/internal/fetch"
	"github.com/pdiddy/hatebu-clipper/internal/hatena"
	"github.com/pdiddy/hatebu-clipper/internal/history"
	"github.com/pdiddy/hatebu-clipper/pkg/types"
)

// ErrAuthentication is returned when no usable credential pair could be
// obtained. It is the same sentinel the hatena handshake wraps.
var ErrAuthentication = hatena.ErrAuthentication

// ErrListing is returned when the bookmark search fails.
var ErrListing = errors.New("listing bookmarks failed")

// State is the orchestrator's position in a run.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
	StateListing         State = "listing"
	StateProcessing      State = "processing"
	StateDone            State = "done"
	StateAborted         State = "aborted"
)

// CredentialStore loads and persists the cached access token pair.
type CredentialStore interface {
	Load() (*types.Credentials, error)
	Save(types.Credentials) error
}

// Authenticator performs an interactive handshake.
type Authenticator interface {
	Authenticate(ctx context.Context) (types.Credentials, error)
}

// Service lists and removes bookmarks for an authenticated user.
type Service interface {
	Search(ctx context.Context, tag string) ([]types.Bookmark, error)
	Delete(ctx context.Context, pageURL string) error
}

// Connector opens an authenticated Service for creds.
type Connector func(ctx context.Context, creds types.Credentials) (Service, error)

// ArtifactWriter persists converted content.
type ArtifactWriter interface {
	Write(bm types.Bookmark, content string) (types.Artifact, error)
}

// Recorder receives per-item outcomes. *history.Store implements it.
type Recorder interface {
	BeginRun(ctx context.Context, tag string) (string, error)
	Record(ctx context.Context, e history.Entry) error
}

// Deps are the collaborators of a Pipeline. Recorder may be nil.
type Deps struct {
	Credentials   CredentialStore
	Authenticator Authenticator
	Connect       Connector
	Fetcher       fetch.Fetcher
	Converter     convert.Converter
	Writer        ArtifactWriter
	Recorder      Recorder
}

// Summary is the outcome of one Run.
type Summary struct {
	State State
	// Found is the number of bookmarks the search returned.
	Found int
	// Attempted counts bookmarks with a URL that entered fetch.
	Attempted int
	Saved     int
	Previewed int
	Deleted   int
	// Skipped counts bookmarks without a URL.
	Skipped int
	// Failed counts attempted bookmarks where any step failed.
	Failed int
}

// HasFailures reports whether any bookmark failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Pipeline is a configured clipping run.
type Pipeline struct {
	cfg  types.RunConfig
	deps Deps
	log  io.Writer
}

// New returns a Pipeline that writes status lines to log.
func New(cfg types.RunConfig, deps Deps, log io.Writer) *Pipeline {
	if log == nil {
		log = io.Discard
	}
	return &Pipeline{cfg: cfg, deps: deps, log: log}
}

// Run executes the pipeline once. The returned Summary is valid even when
// err is non-nil.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	sum := Summary{State: StateUnauthenticated}

	creds, err := p.credentials(ctx)
	if err != nil {
		sum.State = StateAborted
		return sum, err
	}
	sum.State = StateAuthenticated

	svc, err := p.deps.Connect(ctx, creds)
	if err != nil {
		sum.State = StateAborted
		return sum, fmt.Errorf("%w: opening session: %w", ErrAuthentication, err)
	}

	sum.State = StateListing
	bookmarks, err := svc.Search(ctx, p.cfg.Tag)
	if err != nil {
		sum.State = StateAborted
		return sum, fmt.Errorf("%w: %w", ErrListing, err)
	}
	sum.Found = len(bookmarks)
	if len(bookmarks) == 0 {
		fmt.Fprintf(p.log, "No bookmarks found for tag %q.\n", p.cfg.Tag)
		sum.State = StateDone
		return sum, nil
	}
	fmt.Fprintf(p.log, "Found %d bookmarks for tag %q\n", len(bookmarks), p.cfg.Tag)

	sum.State = StateProcessing
	runID := p.beginRun(ctx)
	limit := p.cfg.ItemLimit()

	for _, bm := range bookmarks {
		if err := ctx.Err(); err != nil {
			p.printSummary(sum)
			sum.State = StateAborted
			return sum, err
		}
		if limit > 0 && sum.Attempted >= limit {
			fmt.Fprintf(p.log, "Bookmark deletion is disabled; stopping after %d item(s).\n", limit)
			break
		}
		if bm.URL == "" {
			fmt.Fprintf(p.log, "warning: bookmark %q has no URL, skipping\n", bm.Title)
			sum.Skipped++
			p.record(ctx, runID, bm, history.StatusSkipped, "", errors.New("no URL"))
			continue
		}
		sum.Attempted++
		p.process(ctx, svc, bm, runID, &sum)
	}

	p.printSummary(sum)
	sum.State = StateDone
	return sum, nil
}

// credentials returns the cached pair or runs the handshake and caches the
// result. A cache write failure is only a warning.
func (p *Pipeline) credentials(ctx context.Context) (types.Credentials, error) {
	cached, err := p.deps.Credentials.Load()
	if err != nil {
		fmt.Fprintf(p.log, "warning: %v\n", err)
	}
	if cached != nil && cached.Valid() {
		return *cached, nil
	}

	if p.deps.Authenticator == nil {
		return types.Credentials{}, fmt.Errorf("%w: no cached credentials", ErrAuthentication)
	}
	creds, err := p.deps.Authenticator.Authenticate(ctx)
	if err != nil {
		if errors.Is(err, ErrAuthentication) {
			return types.Credentials{}, err
		}
		return types.Credentials{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if !creds.Valid() {
		return types.Credentials{}, fmt.Errorf("%w: handshake returned an incomplete token pair", ErrAuthentication)
	}

	if err := p.deps.Credentials.Save(creds); err != nil {
		fmt.Fprintf(p.log, "warning: could not cache credentials: %v\n", err)
	}
	return creds, nil
}

// process runs fetch, convert, write and delete for one bookmark. Any
// failure ends processing of that bookmark only.
func (p *Pipeline) process(ctx context.Context, svc Service, bm types.Bookmark, runID string, sum *Summary) {
	fmt.Fprintf(p.log, "\nProcessing: %s (%s)\n", bm.Title, bm.URL)

	fail := func(step, artPath string, err error) {
		fmt.Fprintf(p.log, "failed:  %s (%s: %v)\n", bm.URL, step, err)
		sum.Failed++
		p.record(ctx, runID, bm, history.StatusFailed, artPath, fmt.Errorf("%s: %w", step, err))
	}

	content, err := p.deps.Fetcher.Fetch(ctx, bm.URL)
	if err != nil {
		fail("fetch", "", err)
		return
	}
	if bm.Title == types.DefaultTitle {
		if t := convert.PageTitle(content); t != "" {
			bm.Title = t
		}
	}

	markdown, err := convert.Safe(p.deps.Converter, content, hintFor(bm.URL))
	if err == nil && strings.TrimSpace(markdown) == "" {
		err = errors.New("empty output")
	}
	if err != nil {
		fail("convert", "", err)
		return
	}

	art, err := p.deps.Writer.Write(bm, markdown)
	if err != nil {
		fail("write", "", err)
		return
	}
	status := history.StatusSaved
	switch {
	case art.Previewed:
		sum.Previewed++
		status = history.StatusPreviewed
	case !art.DryRun:
		sum.Saved++
	}

	if p.cfg.DeleteBookmark {
		if p.cfg.DryRun {
			fmt.Fprintf(p.log, "DRY RUN: Skipping bookmark deletion for %s.\n", bm.URL)
		} else {
			fmt.Fprintf(p.log, "Deleting bookmark for %s...\n", bm.URL)
			if err := svc.Delete(ctx, bm.URL); err != nil {
				fail("delete", art.Path, err)
				return
			}
			sum.Deleted++
			status = history.StatusDeleted
		}
	}
	p.record(ctx, runID, bm, status, art.Path, nil)
}

func (p *Pipeline) beginRun(ctx context.Context) string {
	if p.deps.Recorder == nil || p.cfg.DryRun {
		return ""
	}
	id, err := p.deps.Recorder.BeginRun(ctx, p.cfg.Tag)
	if err != nil {
		fmt.Fprintf(p.log, "warning: history disabled for this run: %v\n", err)
		return ""
	}
	return id
}

func (p *Pipeline) record(ctx context.Context, runID string, bm types.Bookmark, status history.Status, artPath string, cause error) {
	if runID == "" {
		return
	}
	e := history.Entry{RunID: runID, URL: bm.URL, Title: bm.Title, Path: artPath, Status: status}
	if cause != nil {
		e.Error = cause.Error()
	}
	if err := p.deps.Recorder.Record(ctx, e); err != nil {
		fmt.Fprintf(p.log, "warning: %v\n", err)
	}
}

func (p *Pipeline) printSummary(sum Summary) {
	fmt.Fprintf(p.log, "\nRun summary: %d saved, %d previewed, %d deleted, %d skipped, %d failed (found: %d)\n",
		sum.Saved, sum.Previewed, sum.Deleted, sum.Skipped, sum.Failed, sum.Found)
}

// hintFor returns the last path segment of rawURL when it carries an
// extension, so plain-text pages bypass HTML conversion.
func hintFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return convert.DefaultHint
	}
	base := path.Base(u.Path)
	if path.Ext(base) == "" {
		return convert.DefaultHint
	}
	return base
}
