package observability

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/config"

	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
)

const serviceComponent = "auth-api"

// newServiceResource is shared by the log, metric and trace providers so every
// signal carries the same identity.
func newServiceResource(ctx context.Context, cfg *config.Config, signal string) (*sdkresource.Resource, error) {
	res, err := sdkresource.New(ctx,
		sdkresource.WithHost(),
		sdkresource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("service.namespace", "vibecraft"),
			attribute.String("service.component", serviceComponent),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s resource: %w", signal, err)
	}
	return res, nil
}
