package components

import (
	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"go.opentelemetry.io/otel"
	ddotel "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/opentelemetry"
	ddtracer "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// ConfigureTracing registers a Datadog backed OpenTelemetry tracer provider
// when tracing is enabled. The returned function flushes and stops it.
func ConfigureTracing(config models.Config) func() {
	if config.Tracing.Enabled != "true" {
		return func() {}
	}

	service := config.Tracing.Service
	if service == "" {
		service = "security-relay"
	}
	provider := ddotel.NewTracerProvider(
		ddtracer.WithService(service),
		ddtracer.WithGlobalTag("relay", config.Name),
	)
	otel.SetTracerProvider(provider)
	log.Log.Info("components.Tracing.ConfigureTracing(): tracing enabled for service " + service)

	return func() {
		if err := provider.Shutdown(); err != nil {
			log.Log.Error("components.Tracing.ConfigureTracing(): " + err.Error())
		}
	}
}
