package outputs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/PsycoVenom0/security-relay/src/capture"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/dromara/carbon/v2"
)

// SnapshotFilename is the name of the attached image, the embed refers to
// it through an attachment:// url.
const SnapshotFilename = "snapshot.jpg"

// WebhookOutput posts alerts to a Discord compatible chat webhook.
type WebhookOutput struct {
	Client       *http.Client
	URL          string
	Username     string
	Title        string
	Color        int
	FooterPrefix string
	Timezone     string
	Timeout      time.Duration
}

func NewWebhookOutput(client *http.Client, config models.WebhookConfig, timezone string) *WebhookOutput {
	return &WebhookOutput{
		Client:       client,
		URL:          config.URL,
		Username:     config.Username,
		Title:        config.Title,
		Color:        config.Color,
		FooterPrefix: config.FooterPrefix,
		Timezone:     timezone,
		Timeout:      time.Duration(config.Timeout) * time.Millisecond,
	}
}

// Compose builds the embed for a trigger message, pointing at the attached snapshot.
func (w *WebhookOutput) Compose(message string, at time.Time) models.WebhookPayload {
	return models.WebhookPayload{
		Username: w.Username,
		Embeds: []models.Embed{
			{
				Title:       w.Title,
				Description: message,
				Color:       w.Color,
				Image: &models.EmbedImage{
					URL: "attachment://" + SnapshotFilename,
				},
				Footer: &models.EmbedFooter{
					Text: w.FooterText(at),
				},
			},
		},
	}
}

// FooterText renders the time of the alert as a wall clock time in the
// timezone of the relay.
func (w *WebhookOutput) FooterText(at time.Time) string {
	timezone := w.Timezone
	if timezone == "" {
		timezone = carbon.Local
	}
	clock := carbon.CreateFromStdTime(at, timezone).ToTimeString()
	if w.FooterPrefix == "" {
		return clock
	}
	return w.FooterPrefix + " • " + clock
}

// FallbackContent is the text sent when no snapshot could be taken.
func FallbackContent(message string, detail string) string {
	return "⚠️ **Alert:** " + message + "\n(Camera snapshot failed: " + detail + ")"
}

// SendSnapshot posts the snapshot together with the embed as a multipart form.
func (w *WebhookOutput) SendSnapshot(ctx context.Context, payload models.WebhookPayload, snapshot capture.Snapshot) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("outputs.webhook.SendSnapshot(): %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	contentType := snapshot.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+SnapshotFilename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("outputs.webhook.SendSnapshot(): %w", err)
	}
	if _, err := part.Write(snapshot.Data); err != nil {
		return fmt.Errorf("outputs.webhook.SendSnapshot(): %w", err)
	}
	if err := writer.WriteField("payload_json", string(payloadJSON)); err != nil {
		return fmt.Errorf("outputs.webhook.SendSnapshot(): %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("outputs.webhook.SendSnapshot(): %w", err)
	}

	return w.post(ctx, writer.FormDataContentType(), body)
}

// SendText posts a plain text message.
func (w *WebhookOutput) SendText(ctx context.Context, content string) error {
	data, err := json.Marshal(models.TextPayload{Content: content})
	if err != nil {
		return fmt.Errorf("outputs.webhook.SendText(): %w", err)
	}
	return w.post(ctx, "application/json", bytes.NewReader(data))
}

func (w *WebhookOutput) post(ctx context.Context, contentType string, body io.Reader) error {
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, body)
	if err != nil {
		return fmt.Errorf("outputs.webhook.post(): %w", withoutURL(err))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("outputs.webhook.post(): %w", withoutURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("outputs.webhook.post(): webhook responded with status %d: %s", resp.StatusCode, strings.TrimSpace(string(reason)))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// withoutURL drops the webhook url from a request error, the url holds the
// webhook token and errors end up in the events.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s webhook: %w", strings.ToLower(urlErr.Op), urlErr.Err)
	}
	return err
}
