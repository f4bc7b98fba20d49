package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/core"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/gitclient"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/history"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/logger"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/metrics"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/outwriter"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/progress"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/remote"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/secrets"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// resolveToken fetches a clone token by secret name. Replaced in tests.
var resolveToken = secrets.ResolveToken

// analyzer bundles everything one or more analysis runs share: the engine,
// the history store, the metrics recorder and the output writer.
type analyzer struct {
	cfg      *contract.Config
	client   contract.GitClient
	store    contract.HistoryStore
	recorder *metrics.Recorder
	writer   *outwriter.OutWriter
}

// newAnalyzer prepares the shared state for cfg. The caller must Close it.
func newAnalyzer(ctx context.Context, c *contract.Config) (*analyzer, error) {
	client, err := gitclient.New(c.Engine)
	if err != nil {
		return nil, err
	}

	if err := applyTokenSecret(ctx, c); err != nil {
		return nil, err
	}

	store, err := history.NewStore(c.HistoryBackend, c.HistoryDBConnect)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}

	a := &analyzer{cfg: c, client: client, store: store, writer: outwriter.NewOutWriter()}
	if c.MetricsFile != "" {
		a.recorder = metrics.NewRecorder(nil)
	}
	return a, nil
}

// run performs one analysis and renders its result or its error. A rendered
// failure is reported as ErrAnalysisFailed.
func (a *analyzer) run(ctx context.Context) error {
	log := logger.For("cmd")
	req := a.cfg.Request()
	log.Debug("starting analysis",
		"repository", remote.Redact(req.Source),
		"branch", req.BranchOrDefault(),
		"engine", a.client.Name(),
	)

	var opts core.Options
	if a.cfg.Progress {
		opts.Progress = progress.NewBar(os.Stderr, progress.DefaultMessage)
	}
	if a.recorder != nil {
		opts.OnCommit = a.recorder.CommitScanned
	}

	start := time.Now()
	res, err := core.Analyze(ctx, req, a.client, opts)
	end := time.Now()

	if err != nil {
		if a.recorder != nil {
			a.recorder.ObserveError(err, end.Sub(start))
			a.flushMetrics()
		}
		if werr := a.writer.WriteError(err, a.cfg); werr != nil {
			return fmt.Errorf("failed to write error: %w", werr)
		}
		return ErrAnalysisFailed
	}

	if a.recorder != nil {
		a.recorder.ObserveResult(res, end.Sub(start))
		a.flushMetrics()
	}
	if runID, err := history.Record(a.store, req, res, start, end); err != nil {
		contract.LogWarn("Failed to record analysis run", err)
	} else if a.cfg.HistoryBackend != schema.NoneBackend {
		log.Debug("analysis run recorded", "run_id", runID)
	}

	return a.writer.WriteResult(res, a.cfg, end.Sub(start))
}

func (a *analyzer) flushMetrics() {
	if err := a.recorder.WriteToTextfile(a.cfg.MetricsFile); err != nil {
		contract.LogWarn("Failed to write metrics", err)
	}
}

// Close releases the history store.
func (a *analyzer) Close() error {
	return a.store.Close()
}

// applyTokenSecret replaces --token-secret with the token it names.
func applyTokenSecret(ctx context.Context, c *contract.Config) error {
	if c.TokenSecret == "" {
		return nil
	}
	token, err := resolveToken(ctx, c.TokenSecret)
	if err != nil {
		return fmt.Errorf("failed to resolve --token-secret: %w", err)
	}
	c.Credentials.Token = token
	c.TokenSecret = ""
	return nil
}

// runOnce runs a single analysis for the validated config.
func runOnce(ctx context.Context, c *contract.Config) error {
	a, err := newAnalyzer(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			contract.LogWarn("Failed to close history store", err)
		}
	}()
	return a.run(ctx)
}
