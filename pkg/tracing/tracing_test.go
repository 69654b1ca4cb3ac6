package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateolafalce/padelpro/config"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.TracingConfig{Enabled: false}, "1.0.0", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	shutdown, err = Init(context.Background(), nil, "1.0.0", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracerStartsSpans(t *testing.T) {
	ctx, span := Tracer("agent").Start(context.Background(), "round")
	defer span.End()
	assert.NotNil(t, ctx)
}
