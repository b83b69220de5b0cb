package database

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/greenleaf-garden/storefront/pkg/database"

// TraceCommand starts a client span for a Redis operation. The returned
// function must be called when the operation completes:
//
//	ctx, end := database.TraceCommand(ctx, "set", 1)
//	defer func() { end(err) }()
//
// redis.Nil is a cache miss, not a failure.
func TraceCommand(ctx context.Context, operation string, commands int) (context.Context, func(error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "redis."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
			attribute.Int("db.redis.commands", commands),
		),
	)

	return ctx, func(err error) {
		if err != nil && !errors.Is(err, redis.Nil) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// commandHook traces every command and pipeline and logs slow ones.
type commandHook struct {
	threshold time.Duration
	logger    *slog.Logger
}

func newCommandHook(threshold time.Duration, logger *slog.Logger) *commandHook {
	return &commandHook{threshold: threshold, logger: logger}
}

func (h *commandHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *commandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		ctx, end := TraceCommand(ctx, cmd.Name(), 1)
		err := next(ctx, cmd)
		end(err)
		h.logSlow(ctx, cmd.Name(), time.Since(start), err)
		return err
	}
}

func (h *commandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		op := pipelineName(cmds)
		ctx, end := TraceCommand(ctx, op, len(cmds))
		err := next(ctx, cmds)
		end(err)
		h.logSlow(ctx, op, time.Since(start), err)
		return err
	}
}

func (h *commandHook) logSlow(ctx context.Context, op string, elapsed time.Duration, err error) {
	if h.threshold <= 0 || h.logger == nil || elapsed < h.threshold {
		return
	}
	attrs := []any{
		slog.String("operation", op),
		slog.Duration("duration", elapsed),
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	h.logger.WarnContext(ctx, "slow redis command", attrs...)
}

// pipelineName joins the distinct command names, e.g. "multi set expire exec"
// becomes "pipeline multi,set,expire,exec".
func pipelineName(cmds []redis.Cmder) string {
	names := make([]string, 0, len(cmds))
	seen := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		if n := c.Name(); !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return "pipeline " + strings.Join(names, ",")
}
