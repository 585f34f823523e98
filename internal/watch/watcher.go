// internal/watch/watcher.go
package watch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hpcloud/tail"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/stack-replayer/api/schemas"
	"github.com/xkilldash9x/stack-replayer/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Replayer is the part of replay.Replayer the watcher needs.
type Replayer interface {
	Replay(ctx context.Context, rc schemas.RunContext) (*schemas.Result, error)
}

// Event is written as one JSON line per detected trace.
type Event struct {
	IncidentID string          `json:"incidentId"`
	DetectedAt time.Time       `json:"detectedAt"`
	Result     *schemas.Result `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Watcher follows a log file, cuts out stack traces and replays each one.
type Watcher struct {
	logger      *zap.Logger
	replayer    Replayer
	limiter     *rate.Limiter
	quietPeriod time.Duration
	projectRoot string
	metadata    schemas.Metadata

	outMu sync.Mutex
	out   io.Writer

	inflight sync.WaitGroup
}

// New creates a Watcher that writes events to out.
func New(logger *zap.Logger, cfg config.WatchConfig, replayer Replayer, out io.Writer, projectRoot string, metadata schemas.Metadata) *Watcher {
	limit := rate.Inf
	if cfg.MaxReplaysPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.MaxReplaysPerMinute))
	}
	burst := cfg.MaxReplaysPerMinute
	if burst <= 0 {
		burst = 1
	}

	return &Watcher{
		logger:      logger.Named("watcher"),
		replayer:    replayer,
		limiter:     rate.NewLimiter(limit, burst),
		quietPeriod: cfg.QuietPeriod,
		projectRoot: projectRoot,
		metadata:    metadata,
		out:         out,
	}
}

// Watch tails path from its current end until ctx is done, then waits for
// replays already started.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	w.logger.Info("Watching log for stack traces...", zap.String("file", path))

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to tail log file: %w", err)
	}
	defer func() {
		_ = t.Stop()
		t.Cleanup()
	}()

	w.monitorLoop(ctx, t.Lines)
	w.inflight.Wait()
	return nil
}

// monitorLoop groups lines into traces. A trace ends at the first line that
// is not a frame, after the quiet period, or when the loop exits.
func (w *Watcher) monitorLoop(ctx context.Context, lines <-chan *tail.Line) {
	var traces collector

	quiet := time.NewTimer(w.quietPeriod)
	if !quiet.Stop() {
		<-quiet.C
	}
	stopQuiet := func() {
		if !quiet.Stop() {
			select {
			case <-quiet.C:
			default:
			}
		}
	}

	replayCtx := ctx
	dispatch := func(trace string, ok bool) {
		if ok {
			w.inflight.Add(1)
			go w.handleTrace(replayCtx, trace)
		}
	}

	for {
		select {
		case <-ctx.Done():
			// The trace cut short by shutdown still gets a full replay.
			replayCtx = context.WithoutCancel(ctx)
			dispatch(traces.flush())
			w.logger.Info("Stopping log watcher.")
			return

		case line, ok := <-lines:
			if !ok {
				dispatch(traces.flush())
				w.logger.Info("Log tailer channel closed.")
				return
			}
			if line.Err != nil {
				w.logger.Warn("Error reading from log file", zap.Error(line.Err))
				continue
			}

			dispatch(traces.feed(line.Text))
			stopQuiet()
			if traces.pending() {
				quiet.Reset(w.quietPeriod)
			}

		case <-quiet.C:
			dispatch(traces.flush())
		}
	}
}

func (w *Watcher) handleTrace(ctx context.Context, trace string) {
	defer w.inflight.Done()

	event := Event{IncidentID: uuid.NewString(), DetectedAt: time.Now()}
	logger := w.logger.With(zap.String("incident_id", event.IncidentID))

	if !w.limiter.Allow() {
		logger.Warn("Replay rate limit reached; skipping trace.")
		return
	}

	logger.Info("Stack trace detected, replaying.")
	result, err := w.replayer.Replay(ctx, schemas.RunContext{
		ErrorLog:    trace,
		ProjectRoot: w.projectRoot,
		Metadata:    w.metadata,
	})
	if err != nil {
		logger.Error("Replay failed.", zap.Error(err))
		event.Error = err.Error()
	}
	event.Result = result

	w.emit(event)
}

func (w *Watcher) emit(event Event) {
	line, err := json.Marshal(event)
	if err != nil {
		w.logger.Error("Failed to encode watch event.", zap.Error(err))
		return
	}

	w.outMu.Lock()
	defer w.outMu.Unlock()
	if _, err := w.out.Write(append(line, '\n')); err != nil {
		w.logger.Error("Failed to write watch event.", zap.Error(err))
	}
}
