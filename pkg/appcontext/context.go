package appcontext

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextId int

const (
	runIdKeyId contextId = iota
	phaseKeyId
	identityKeyId
	requestIdKeyId
)

func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, requestIdKeyId, requestId)
}

// WithNewRunId tags ctx with a freshly generated run id.
func WithNewRunId(ctx context.Context) context.Context {
	return WithRunId(ctx, uuid.NewString())
}

func WithRunId(ctx context.Context, runId string) context.Context {
	return context.WithValue(ctx, runIdKeyId, runId)
}

func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKeyId, phase)
}

func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKeyId, identity)
}

func RunIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	runId, _ := ctx.Value(runIdKeyId).(string)
	return runId
}

func LoggerFromContext(logger logrus.FieldLogger, ctx context.Context) logrus.FieldLogger {
	if ctx == nil {
		return logger
	}

	result := logger

	if ctxRunId, ok := ctx.Value(runIdKeyId).(string); ok && ctxRunId != "" {
		result = result.WithField("run_id", ctxRunId)
	}

	if ctxPhase, ok := ctx.Value(phaseKeyId).(string); ok && ctxPhase != "" {
		result = result.WithField("phase", ctxPhase)
	}

	if ctxIdentity, ok := ctx.Value(identityKeyId).(string); ok && ctxIdentity != "" {
		result = result.WithField("identity", ctxIdentity)
	}

	if ctxRequestId, ok := ctx.Value(requestIdKeyId).(string); ok && ctxRequestId != "" {
		result = result.WithField("request_id", ctxRequestId)
	}

	return result
}

func PhaseFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	phase, _ := ctx.Value(phaseKeyId).(string)
	return phase
}
