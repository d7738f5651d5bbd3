// Package mirror keeps the local emoji directory in sync with Slack.
package mirror

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/sidkik/emoji-mirror/pkg/emoji"
	"github.com/sidkik/emoji-mirror/pkg/errors"
	"github.com/sidkik/emoji-mirror/pkg/store"
)

// IndexFetcher fetches the current emoji index.
type IndexFetcher interface {
	FetchIndex(ctx context.Context) (emoji.RawIndex, error)
}

// AssetFetcher downloads a single emoji image.
type AssetFetcher interface {
	FetchAsset(ctx context.Context, url string) (io.ReadCloser, error)
}

// Result summarizes a synchronization pass.
type Result struct {
	Added      int
	Removed    int
	Mirrored   int
	Unresolved int
	Duration   time.Duration
}

// Options configures a Syncer. The zero value is usable.
type Options struct {
	// DownloadsPerSecond paces downloads. Zero or less disables pacing,
	// although downloads are still made one at a time.
	DownloadsPerSecond float64

	Metrics *Metrics
	Log     logrus.FieldLogger
	Clock   clockwork.Clock
}

// Syncer runs synchronization passes. It owns the Guard that keeps passes
// from overlapping.
type Syncer struct {
	store   *store.Store
	index   IndexFetcher
	assets  AssetFetcher
	limiter *rate.Limiter
	metrics *Metrics
	log     logrus.FieldLogger
	clock   clockwork.Clock

	guard Guard
}

// NewSyncer creates a Syncer that mirrors into st.
func NewSyncer(st *store.Store, index IndexFetcher, assets AssetFetcher, opts Options) *Syncer {
	limit := rate.Inf
	if opts.DownloadsPerSecond > 0 {
		limit = rate.Limit(opts.DownloadsPerSecond)
	}
	if opts.Metrics == nil {
		opts.Metrics = MustNewMetrics(nil)
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	return &Syncer{
		store:   st,
		index:   index,
		assets:  assets,
		limiter: rate.NewLimiter(limit, 1),
		metrics: opts.Metrics,
		log:     opts.Log,
		clock:   opts.Clock,
	}
}

// Running returns whether a pass is in progress.
func (s *Syncer) Running() bool {
	return s.guard.Running()
}

// Pass runs a single synchronization pass and blocks until it completes. It
// returns errors.ErrPassInProgress without doing anything if another pass is
// already running.
func (s *Syncer) Pass(ctx context.Context) (Result, error) {
	if !s.guard.TryAcquire() {
		s.metrics.droppedTriggers.Inc()
		return Result{}, errors.ErrPassInProgress
	}
	return s.runAcquired(ctx)
}

// runAcquired runs a pass for a caller that already holds the guard.
func (s *Syncer) runAcquired(ctx context.Context) (res Result, err error) {
	start := s.clock.Now()
	err = s.guard.Run(func() error {
		var passErr error
		res, passErr = s.pass(ctx)
		return passErr
	})
	res.Duration = s.clock.Since(start)
	s.metrics.observePass(res, err)

	if err != nil {
		s.log.WithError(err).Error("Synchronization pass failed. " +
			"Will retry on the next trigger.")
		return res, err
	}

	entry := s.log.WithFields(logrus.Fields{
		"added":    res.Added,
		"removed":  res.Removed,
		"emoji":    res.Mirrored,
		"duration": res.Duration,
	})
	if res.Added == 0 && res.Removed == 0 {
		entry.Debug("Emoji already up to date")
	} else {
		entry.Info("Synchronized emoji")
	}
	return res, nil
}

func (s *Syncer) pass(ctx context.Context) (Result, error) {
	previous := s.store.LoadIndex()

	current, err := s.index.FetchIndex(ctx)
	if err != nil {
		return Result{}, errors.WithContext(err, "fetch index")
	}
	if !current.OK {
		return Result{}, errors.RemoteError{Op: "emoji.list", Reason: "non-ok response"}
	}

	previousFlat, _ := s.flatten(previous)
	currentFlat, unresolved := s.flatten(current)
	for _, aliasErr := range unresolved {
		s.log.WithFields(logrus.Fields{
			"name":   aliasErr.Name,
			"target": aliasErr.Target,
		}).Warn("Skipping alias that doesn't resolve to an image")
	}

	delta := emoji.Diff(previousFlat, currentFlat)
	res := Result{
		Added:      len(delta.ToAdd),
		Removed:    len(delta.ToRemove),
		Mirrored:   len(currentFlat),
		Unresolved: len(unresolved),
	}

	if err := s.Apply(ctx, delta); err != nil {
		return res, err
	}

	if err := s.store.SaveIndex(current); err != nil {
		return res, errors.WithContext(err, "save index")
	}
	return res, nil
}

// flatten resolves the aliases in index and drops names that can't be
// stored on disk.
func (s *Syncer) flatten(index emoji.RawIndex) (emoji.FlatIndex, []emoji.UnresolvedAliasError) {
	flat, unresolved := emoji.Resolve(index.Emoji)
	for name := range flat {
		if err := store.ValidName(name); err != nil {
			s.log.WithError(err).Warn("Skipping emoji that can't be stored")
			delete(flat, name)
		}
	}
	return flat, unresolved
}

// Apply removes the stale files in delta, and then downloads the new ones.
// All removals finish before the first download starts. The first failure
// aborts the rest of the work.
func (s *Syncer) Apply(ctx context.Context, delta emoji.Delta) error {
	for _, e := range delta.ToRemove {
		s.log.WithField("name", e.Name).Info("Deleting")
		if err := s.store.Remove(e.Name); err != nil {
			return errors.WithContext(err, fmt.Sprintf("delete %q", e.Name))
		}
		s.metrics.deletions.Inc()
	}

	queue := make(chan emoji.Entry, len(delta.ToAdd))
	for _, e := range delta.ToAdd {
		queue <- e
	}
	close(queue)
	return s.downloadWorker(ctx, queue)
}

// downloadWorker downloads the queued emojis one at a time, in order.
// Slack throttles clients that download in parallel.
func (s *Syncer) downloadWorker(ctx context.Context, queue <-chan emoji.Entry) error {
	for e := range queue {
		if err := s.download(ctx, e); err != nil {
			return errors.WithContext(err, fmt.Sprintf("download %q", e.Name))
		}
	}
	return nil
}

func (s *Syncer) download(ctx context.Context, e emoji.Entry) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return errors.WithContext(err, "wait for rate limit")
	}

	s.log.WithFields(logrus.Fields{
		"name": e.Name,
		"url":  e.URL,
	}).Info("Downloading")

	body, err := s.assets.FetchAsset(ctx, e.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	n, err := s.store.Write(e.Name, body)
	if err != nil {
		return err
	}

	s.metrics.downloads.Inc()
	s.metrics.downloadedBytes.Add(float64(n))
	return nil
}
