package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", service),
	}
}

// LogOperation logs the outcome of one operation. Caller mistakes are logged
// below error level so that only infrastructure failures page anyone.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, resourceID uint, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	switch {
	case err == nil:
	case IsNotFound(err):
		status = "not_found"
	case IsValidation(err):
		level = slog.LevelWarn
		status = "validation_error"
	case IsPrecondition(err):
		level = slog.LevelWarn
		status = "precondition_failed"
	case IsConflict(err):
		level = slog.LevelWarn
		status = "conflict"
	default:
		level = slog.LevelError
		status = "error"
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var precondition *PreconditionError
		var validation ValidationErrors
		if errors.As(err, &precondition) {
			attrs = append(attrs, slog.String("rule", precondition.Rule))
		} else if errors.As(err, &validation) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validation)))
		}
	}

	if requestID, ok := utils.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// Operation times one call; finish it with LogResult.
type Operation struct {
	logger    *ServiceLogger
	ctx       context.Context
	name      string
	startTime time.Time
}

func (l *ServiceLogger) Start(ctx context.Context, name string) *Operation {
	return &Operation{
		logger:    l,
		ctx:       ctx,
		name:      name,
		startTime: time.Now(),
	}
}

func (o *Operation) LogResult(resourceID uint, resourceType string, err error) {
	o.logger.LogOperation(o.ctx, o.name, resourceID, resourceType, time.Since(o.startTime), err)
}
