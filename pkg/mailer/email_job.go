package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Subject/Text/HTML are set directly, or Template names a template set
// rendered with Data by the worker.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "account"
	Data     map[string]any `json:"data,omitempty"`
	// EventID lets the worker correlate deliveries with the event that caused them.
	EventID string `json:"event_id,omitempty"`
}

// MessageID lets queue publishers tag the message with the event id.
func (j EmailJob) MessageID() string { return j.EventID }
