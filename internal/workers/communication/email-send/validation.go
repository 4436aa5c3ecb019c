package emailsend

import "ipo-readiness/internal/common/validation"

var inputSchema = validation.MustCompile("email-send", `{
  "type": "object",
  "required": ["to", "subject"],
  "properties": {
    "to": {"type": "string", "format": "email", "maxLength": 255},
    "cc": {"type": "string", "maxLength": 1000},
    "subject": {"type": "string", "minLength": 1, "maxLength": 500},
    "html": {"type": "string", "maxLength": 500000},
    "text": {"type": "string", "maxLength": 200000},
    "body": {"type": "string", "maxLength": 500000},
    "isHtml": {"type": "boolean"},
    "metadata": {"type": "object"}
  }
}`)
