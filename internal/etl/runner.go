// Package etl fetches, parses and publishes datasets into the engine store.
package etl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"gamesales/internal/config"
	"gamesales/internal/engine"
	"gamesales/internal/metrics"
	"gamesales/internal/source"
	"gamesales/internal/tracing"
)

const defaultMaxBytes = 64 << 20

var (
	// ErrSuperseded is returned when a load finished after a newer one had
	// already been published; its dataset was discarded.
	ErrSuperseded = errors.New("dataset superseded by a newer load")
	// ErrSourceNotAllowed is returned by Reload for a URI other than the
	// configured one when remote URIs are disabled.
	ErrSourceNotAllowed = errors.New("reloading from another source is disabled")
)

// Runner runs dataset loads. Each load reserves a store generation up front,
// so the most recently started load wins regardless of completion order.
type Runner struct {
	store   *engine.Store
	parser  *engine.Parser
	cfg     config.DataConfig
	opts    source.Options
	logger  *slog.Logger
	metrics *metrics.Metrics

	group     singleflight.Group
	newSource func(uri string, opts source.Options) (source.Source, error)
}

func NewRunner(store *engine.Store, cfg config.DataConfig, logger *slog.Logger, m *metrics.Metrics) *Runner {
	return &Runner{
		store:  store,
		parser: engine.NewParser(cfg.Workers),
		cfg:    cfg,
		opts: source.Options{
			HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
			S3Region:   cfg.S3Region,
			S3Endpoint: cfg.S3Endpoint,
		},
		logger:    logger.With("component", "etl"),
		metrics:   m,
		newSource: source.New,
	}
}

// DefaultSource is the URI loaded at startup and by a parameterless reload.
func (r *Runner) DefaultSource() string { return r.cfg.Source }

// ResolveSource returns the URI a Reload of uri would load.
func (r *Runner) ResolveSource(uri string) (string, error) {
	if uri == "" {
		return r.cfg.Source, nil
	}
	if uri != r.cfg.Source && !r.cfg.AllowRemoteURI {
		return "", ErrSourceNotAllowed
	}
	return uri, nil
}

type flight struct {
	ds  *engine.Dataset
	gen uint64
}

// Reload loads uri, or the default source when uri is empty. Concurrent
// reloads of the same URI share one load and its result, unless that load
// began before another load the caller has already seen start; the caller
// then runs a fresh load so its reload is never older than what preceded it.
// The shared load is detached from ctx; cancelling ctx only stops waiting.
func (r *Runner) Reload(ctx context.Context, uri string) (*engine.Dataset, error) {
	uri, err := r.ResolveSource(uri)
	if err != nil {
		return nil, err
	}

	mark := r.store.Latest()
	for {
		ch := r.group.DoChan(uri, func() (any, error) {
			src, err := r.newSource(uri, r.opts)
			if err != nil {
				return flight{}, err
			}
			gen := r.store.Begin()
			ds, err := r.load(context.WithoutCancel(ctx), gen, src)
			return flight{ds: ds, gen: gen}, err
		})

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		f, _ := res.Val.(flight)
		if f.gen != 0 && f.gen < mark {
			r.logger.DebugContext(ctx, "joined reload predates a newer load, reloading again",
				slog.String("source", uri), slog.Uint64("generation", f.gen))
			continue
		}
		if res.Shared {
			r.logger.DebugContext(ctx, "reload shared with a concurrent caller", slog.String("source", uri))
		}
		return f.ds, res.Err
	}
}

// LoadBytes loads an uploaded body.
func (r *Runner) LoadBytes(ctx context.Context, name string, data []byte) (*engine.Dataset, error) {
	return r.Load(ctx, &source.Bytes{Label: "upload:" + name, Data: data})
}

// Load fetches and parses src and publishes the result. Failures are recorded
// in the store and returned; the previously published dataset stays in place.
// A load overtaken by a newer one returns its dataset with ErrSuperseded.
func (r *Runner) Load(ctx context.Context, src source.Source) (*engine.Dataset, error) {
	return r.load(ctx, r.store.Begin(), src)
}

func (r *Runner) load(ctx context.Context, gen uint64, src source.Source) (*engine.Dataset, error) {
	if r.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.LoadTimeout)
		defer cancel()
	}

	ctx, span := tracing.Tracer().Start(ctx, "dataset.load", trace.WithAttributes(
		attribute.String("dataset.source", src.Name()),
		attribute.Int64("dataset.generation", int64(gen)),
	))
	defer span.End()

	log := r.logger.With(slog.String("source", src.Name()), slog.Uint64("generation", gen))
	log.InfoContext(ctx, "dataset load started")
	start := time.Now()

	ds, err := r.fetch(ctx, gen, src)
	took := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.store.Fail(gen, err)
		r.metrics.ObserveLoad(metrics.ResultFailure, took)
		log.ErrorContext(ctx, "dataset load failed", slog.Any("error", err), slog.Duration("took", took))
		return nil, err
	}

	if !r.store.Publish(ds) {
		r.metrics.ObserveLoad(metrics.ResultSuperseded, took)
		log.WarnContext(ctx, "dataset load superseded, discarding", slog.Duration("took", took))
		return ds, ErrSuperseded
	}

	r.metrics.ObserveLoad(metrics.ResultSuccess, took)
	r.metrics.SetDataset(ds.Generation, len(ds.Records), ds.InvalidFields)
	span.SetAttributes(attribute.Int("dataset.records", len(ds.Records)))
	log.InfoContext(ctx, "dataset published",
		slog.String("dataset_id", ds.ID),
		slog.Int("records", len(ds.Records)),
		slog.Int("invalid_fields", ds.InvalidFields),
		slog.Duration("took", took))
	return ds, nil
}

func (r *Runner) fetch(ctx context.Context, gen uint64, src source.Source) (*engine.Dataset, error) {
	data, err := r.read(ctx, src)
	if err != nil {
		return nil, err
	}

	_, span := tracing.Tracer().Start(ctx, "dataset.parse", trace.WithAttributes(
		attribute.Int("dataset.bytes", len(data)),
	))
	res, err := r.parser.Parse(ctx, bytes.NewReader(data))
	span.End()
	if err != nil {
		return nil, err
	}

	return &engine.Dataset{
		ID:            uuid.NewString(),
		Generation:    gen,
		Source:        src.Name(),
		Records:       res.Records,
		InvalidFields: res.InvalidFields,
		Fingerprint:   xxh3.Hash(data),
		LoadedAt:      time.Now().UTC(),
	}, nil
}

func (r *Runner) read(ctx context.Context, src source.Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	limit := r.cfg.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, &source.LoadError{Source: src.Name(), Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &source.LoadError{Source: src.Name(), Err: fmt.Errorf("dataset exceeds %d bytes", limit)}
	}
	return data, nil
}
