package observability

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRedisMetricsHookCountsCommands(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	hook, err := newRedisMetricsHook(provider.Meter("redis-test"), client.PoolStats)
	if err != nil {
		t.Fatalf("build hook: %v", err)
	}
	client.AddHook(hook)

	if err := client.Set(ctx, "session:1", "7", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := client.Get(ctx, "session:missing").Err(); err != redis.Nil {
		t.Fatalf("expected redis.Nil, got %v", err)
	}
	pipe := client.TxPipeline()
	pipe.Del(ctx, "session:1")
	pipe.SRem(ctx, "user:7", "1")
	if _, err := pipe.Exec(ctx); err != nil {
		t.Fatalf("pipeline: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	statuses := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "redis.command.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value("status")
				statuses[status.AsString()] += dp.Value
			}
		}
	}
	if statuses["miss"] != 1 {
		t.Fatalf("expected one miss, got %v", statuses)
	}
	if statuses["success"] < 3 {
		t.Fatalf("expected at least three successful commands, got %v", statuses)
	}
}

func TestRedisCommandStatus(t *testing.T) {
	if got := redisCommandStatus(nil); got != "success" {
		t.Fatalf("nil -> %s", got)
	}
	if got := redisCommandStatus(redis.Nil); got != "miss" {
		t.Fatalf("redis.Nil -> %s", got)
	}
	if got := redisCommandStatus(context.DeadlineExceeded); got != "error" {
		t.Fatalf("deadline -> %s", got)
	}
}
