package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockArchive/internal/collector"
	"StockArchive/internal/model"
	"StockArchive/internal/recorder"
	"StockArchive/internal/store"
	"StockArchive/internal/transform"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options are the filesystem locations a run writes to.
type Options struct {
	OutputDir     string
	MetadataPath  string
	WriteMetadata bool
}

// Pipeline downloads, reshapes and persists price history symbol by symbol.
type Pipeline struct {
	Fetcher  collector.Fetcher
	Recorder recorder.Recorder
	Logger   *zap.Logger
	Options  Options
	Now      func() time.Time
}

// New creates a Pipeline. A nil recorder or logger is replaced by a no-op.
func New(fetcher collector.Fetcher, rec recorder.Recorder, logger *zap.Logger, opts Options) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		Fetcher:  fetcher,
		Recorder: rec,
		Logger:   logger,
		Options:  opts,
		Now:      time.Now,
	}
}

// Run processes symbols strictly in order. Per-symbol failures are captured
// in the report and never stop the loop. An error is returned only when the
// output directory or metadata file cannot be written, or ctx is cancelled;
// in the latter case no metadata is written.
func (p *Pipeline) Run(ctx context.Context, symbols []string) (*model.RunReport, error) {
	report := &model.RunReport{
		ID:        uuid.NewString(),
		Provider:  p.Fetcher.Name(),
		StartedAt: p.Now(),
	}

	if err := store.EnsureDir(p.Options.OutputDir); err != nil {
		return report, err
	}

	p.Logger.Info("starting download",
		zap.Int("symbols", len(symbols)),
		zap.String("provider", report.Provider),
		zap.String("run_id", report.ID))

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			p.Logger.Warn("run cancelled", zap.Int("processed", len(report.Results)), zap.Error(err))
			report.FinishedAt = p.Now()
			return report, err
		}
		report.Results = append(report.Results, p.ProcessSymbol(ctx, symbol))
	}
	report.FinishedAt = p.Now()

	if p.Options.WriteMetadata {
		if err := store.WriteMetadata(p.Options.MetadataPath, report.Succeeded(), report.FinishedAt); err != nil {
			return report, err
		}
	}

	if err := p.Recorder.RecordRun(report); err != nil {
		p.Logger.Error("record run", zap.Error(err))
	}

	p.Logger.Info("all downloads finished",
		zap.Int("succeeded", report.Count(model.StatusSucceeded)),
		zap.Int("empty", report.Count(model.StatusEmpty)),
		zap.Int("failed", report.Count(model.StatusFailed)),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

// ProcessSymbol fetches, reshapes and writes one symbol.
func (p *Pipeline) ProcessSymbol(ctx context.Context, symbol string) model.SymbolResult {
	log := p.Logger.With(zap.String("symbol", symbol))
	log.Info("downloading")

	res := model.SymbolResult{Symbol: symbol}

	frame, err := p.Fetcher.FetchHistory(ctx, symbol)
	if errors.Is(err, collector.ErrNotFound) {
		frame, err = &model.Frame{}, nil
	}
	if err != nil {
		return p.fail(log, res, fmt.Errorf("fetch: %w", err))
	}
	if frame.Empty() {
		log.Warn("no data returned, skipping")
		res.Status = model.StatusEmpty
		return res
	}

	table, shape := transform.PriceTable(frame, symbol)
	if shape == transform.ShapeCompoundFallback {
		log.Warn("compound columns without this symbol, using table as returned")
	}

	data, err := store.EncodeSeries(table)
	if err != nil {
		return p.fail(log, res, err)
	}
	path, err := store.WriteSeries(p.Options.OutputDir, symbol, data)
	if err != nil {
		return p.fail(log, res, err)
	}

	res.Status = model.StatusSucceeded
	res.Rows = table.Len()
	res.Path = path
	log.Info("saved", zap.String("path", path), zap.Int("rows", res.Rows))
	return res
}

// successLookup is implemented by recorders that keep per-symbol history.
type successLookup interface {
	LastSuccess(symbol string) (int64, error)
}

func (p *Pipeline) fail(log *zap.Logger, res model.SymbolResult, err error) model.SymbolResult {
	fields := []zap.Field{zap.Error(err)}
	if lookup, ok := p.Recorder.(successLookup); ok {
		if last, lerr := lookup.LastSuccess(res.Symbol); lerr != nil {
			log.Debug("look up last success", zap.Error(lerr))
		} else if last > 0 {
			fields = append(fields, zap.Time("last_success", time.Unix(last, 0).UTC()))
		}
	}
	log.Error("download failed", fields...)
	res.Status = model.StatusFailed
	res.Err = err
	return res
}
