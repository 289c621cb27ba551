package components

import (
	"context"
	"net/http"
	"time"

	"github.com/PsycoVenom0/security-relay/src/capture"
	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/PsycoVenom0/security-relay/src/outputs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/PsycoVenom0/security-relay/src/components")

// CameraUnreachable is the detail of the text alert when no snapshot
// could be taken.
const CameraUnreachable = "Camera unreachable"

// The Dispatcher turns a trigger message into a chat alert. It owns one
// http client which is shared by all dispatches, for both the camera and
// the webhook.
type Dispatcher struct {
	Client  *http.Client
	Camera  *capture.IPCamera
	Webhook *outputs.WebhookOutput
}

func NewDispatcher(config models.Config) *Dispatcher {
	client := &http.Client{}
	return &Dispatcher{
		Client: client,
		Camera: capture.NewIPCamera(client,
			config.Camera.URL,
			time.Duration(config.Camera.Timeout)*time.Millisecond,
			config.Camera.MaxSize),
		Webhook: outputs.NewWebhookOutput(client, config.Webhook, config.Timezone),
	}
}

// SendAlert fetches a snapshot and posts it with the message to the webhook.
// When the camera cannot be reached a text only alert is sent instead, any
// other failure is reported without a fallback. The returned error explains
// why the snapshot was not delivered, also when the fallback succeeded.
func (d *Dispatcher) SendAlert(ctx context.Context, message string) (models.Outcome, error) {
	ctx, span := tracer.Start(ctx, "SendAlert", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("relay.camera", d.Camera.URL))

	log.Log.Info("components.Dispatcher.SendAlert(): alert received \"" + message + "\", fetching camera snapshot.")

	snapshot, err := d.Camera.Snapshot(ctx)
	if err != nil {
		if capture.IsUnreachable(err) {
			log.Log.Warning("components.Dispatcher.SendAlert(): " + err.Error())
			outcome, fallbackErr := d.SendFallback(ctx, message, CameraUnreachable)
			span.SetAttributes(attribute.String("relay.outcome", string(outcome)))
			if fallbackErr != nil {
				span.SetStatus(codes.Error, fallbackErr.Error())
				return outcome, fallbackErr
			}
			return outcome, err
		}
		return d.fail(span, err)
	}

	payload := d.Webhook.Compose(message, time.Now())
	if err := d.Webhook.SendSnapshot(ctx, payload, snapshot); err != nil {
		return d.fail(span, err)
	}

	log.Log.Info("components.Dispatcher.SendAlert(): snapshot sent to webhook.")
	span.SetAttributes(attribute.String("relay.outcome", string(models.OutcomeDelivered)))
	return models.OutcomeDelivered, nil
}

func (d *Dispatcher) fail(span trace.Span, err error) (models.Outcome, error) {
	log.Log.Error("components.Dispatcher.SendAlert(): error: " + err.Error())
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("relay.outcome", string(models.OutcomeFailed)))
	return models.OutcomeFailed, err
}

// SendFallback posts a text only alert. There is no further fallback when
// this fails.
func (d *Dispatcher) SendFallback(ctx context.Context, message string, detail string) (models.Outcome, error) {
	ctx, span := tracer.Start(ctx, "SendFallback", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if err := d.Webhook.SendText(ctx, outputs.FallbackContent(message, detail)); err != nil {
		log.Log.Error("components.Dispatcher.SendFallback(): failed to send fallback message: " + err.Error())
		span.RecordError(err)
		return models.OutcomeFallbackFailed, err
	}
	log.Log.Info("components.Dispatcher.SendFallback(): text alert sent to webhook.")
	return models.OutcomeFallback, nil
}
