package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "dittofs", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, ClientIP("192.168.1.1"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("ClientIP", func(t *testing.T) {
		attr := ClientIP("192.168.1.100")
		assert.Equal(t, AttrClientIP, string(attr.Key))
		assert.Equal(t, "192.168.1.100", attr.Value.AsString())
	})

	t.Run("ClientAddr", func(t *testing.T) {
		attr := ClientAddr("192.168.1.100:12345")
		assert.Equal(t, AttrClientAddr, string(attr.Key))
		assert.Equal(t, "192.168.1.100:12345", attr.Value.AsString())
	})

	t.Run("Namespace", func(t *testing.T) {
		attr := Namespace("acme-labs")
		assert.Equal(t, AttrNamespace, string(attr.Key))
		assert.Equal(t, "acme-labs", attr.Value.AsString())
	})

	t.Run("Repository", func(t *testing.T) {
		attr := Repository("acme-labs/bert-base")
		assert.Equal(t, AttrRepository, string(attr.Key))
		assert.Equal(t, "acme-labs/bert-base", attr.Value.AsString())
	})

	t.Run("Revision", func(t *testing.T) {
		attr := Revision("main")
		assert.Equal(t, AttrRevision, string(attr.Key))
		assert.Equal(t, "main", attr.Value.AsString())
	})

	t.Run("Commit", func(t *testing.T) {
		attr := Commit("deadbeef")
		assert.Equal(t, AttrCommit, string(attr.Key))
		assert.Equal(t, "deadbeef", attr.Value.AsString())
	})

	t.Run("Path", func(t *testing.T) {
		attr := Path("config.json")
		assert.Equal(t, AttrPath, string(attr.Key))
		assert.Equal(t, "config.json", attr.Value.AsString())
	})

	t.Run("OID", func(t *testing.T) {
		attr := OID("abcd1234")
		assert.Equal(t, AttrOID, string(attr.Key))
		assert.Equal(t, "abcd1234", attr.Value.AsString())
	})

	t.Run("Size", func(t *testing.T) {
		attr := Size(1048576)
		assert.Equal(t, AttrSize, string(attr.Key))
		assert.Equal(t, int64(1048576), attr.Value.AsInt64())
	})

	t.Run("Principal", func(t *testing.T) {
		attr := Principal("user-123")
		assert.Equal(t, AttrPrincipal, string(attr.Key))
		assert.Equal(t, "user-123", attr.Value.AsString())
	})

	t.Run("Role", func(t *testing.T) {
		attr := Role("writer")
		assert.Equal(t, AttrRole, string(attr.Key))
		assert.Equal(t, "writer", attr.Value.AsString())
	})

	t.Run("TransferOp", func(t *testing.T) {
		attr := TransferOp("upload")
		assert.Equal(t, AttrTransferOp, string(attr.Key))
		assert.Equal(t, "upload", attr.Value.AsString())
	})

	t.Run("TransferObjects", func(t *testing.T) {
		attr := TransferObjects(3)
		assert.Equal(t, AttrTransferObjects, string(attr.Key))
		assert.Equal(t, int64(3), attr.Value.AsInt64())
	})

	t.Run("CacheHit", func(t *testing.T) {
		attr := CacheHit(true)
		assert.Equal(t, AttrCacheHit, string(attr.Key))
		assert.True(t, attr.Value.AsBool())
	})

	t.Run("CacheSource", func(t *testing.T) {
		attr := CacheSource("stat")
		assert.Equal(t, AttrCacheSource, string(attr.Key))
		assert.Equal(t, "stat", attr.Value.AsString())
	})

	t.Run("Bucket", func(t *testing.T) {
		attr := Bucket("my-bucket")
		assert.Equal(t, AttrBucket, string(attr.Key))
		assert.Equal(t, "my-bucket", attr.Value.AsString())
	})

	t.Run("StorageKey", func(t *testing.T) {
		attr := StorageKey("path/to/object")
		assert.Equal(t, AttrKey, string(attr.Key))
		assert.Equal(t, "path/to/object", attr.Value.AsString())
	})
}

func TestStartResolverSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartResolverSpan(ctx, SpanResolverHead, "repo-1", "main", "README.md")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartCommitSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartCommitSpan(ctx, "repo-1", "main", "user-123")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartTransferSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartTransferSpan(ctx, SpanTransferBatch, "repo-1", "upload", 2)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartAuthSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartAuthSpan(ctx, SpanAuthLogin, "password")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartCacheSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartCacheSpan(ctx, "cache.lookup")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartCacheSpan(ctx, "cache.write", CacheHit(false))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}
