package emailsend

import "time"

// Input is a single message. HTML and Text may both be set; a legacy Body is
// used for whichever of them IsHTML selects when that part is empty.
type Input struct {
	To       string                 `json:"to"`
	CC       string                 `json:"cc,omitempty"` // comma-separated
	Subject  string                 `json:"subject"`
	HTML     string                 `json:"html,omitempty"`
	Text     string                 `json:"text,omitempty"`
	Body     string                 `json:"body,omitempty"`
	IsHTML   bool                   `json:"isHtml,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Provider string    `json:"provider,omitempty"`
	SentAt   time.Time `json:"sentAt,omitempty"`
}
