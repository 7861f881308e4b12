package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestContextLoggerRoundTrip(t *testing.T) {
	base := zap.NewNop().With(zap.String("request_id", "r1"))

	ctx := ContextWithLogger(context.Background(), base)

	if got := FromContext(ctx); got != base {
		t.Error("FromContext must return the logger stored by ContextWithLogger")
	}
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext must never return nil")
	}
}
