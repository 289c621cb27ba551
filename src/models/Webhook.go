package models

// WebhookPayload is the JSON document sent as payload_json next to the
// snapshot. The layout follows the Discord webhook API.
type WebhookPayload struct {
	Username string  `json:"username"`
	Embeds   []Embed `json:"embeds"`
}

type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// TextPayload is the plain message used when no snapshot is available.
type TextPayload struct {
	Content string `json:"content"`
}
