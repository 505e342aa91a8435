package tracing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenjaura/marketplace/internal/config"
	"github.com/zenjaura/marketplace/internal/tracing"
)

func TestInit_WithoutExporter(t *testing.T) {
	// Arrange
	ctx := t.Context()

	// Act
	shutdown, err := tracing.Init(ctx, &config.Tracing{ServiceName: "zenjaura-test", SamplerRatio: 1}, "test")
	require.NoError(t, err)

	_, span := tracing.Tracer().Start(ctx, "checkout")
	span.End()

	// Assert
	assert.True(t, span.SpanContext().IsValid())
	assert.NoError(t, shutdown(ctx))
}
