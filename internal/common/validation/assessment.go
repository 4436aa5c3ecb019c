package validation

const answersSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["questionId", "selectedLabel", "weight"],
    "properties": {
      "questionId": {"type": "integer", "minimum": 1},
      "selectedLabel": {"type": "string", "minLength": 1},
      "weight": {"type": "integer", "minimum": 1, "maximum": 4}
    }
  }
}`

// SubmissionSchema covers a finished questionnaire: track, identity and answers.
var SubmissionSchema = MustCompile("submission", `{
  "type": "object",
  "required": ["track", "userName", "userEmail", "answers"],
  "properties": {
    "sessionId": {"type": "string"},
    "track": {"type": "string", "enum": ["mainboard", "sme", "MAINBOARD", "SME"]},
    "userName": {"type": "string", "minLength": 1, "maxLength": 200},
    "userEmail": {"type": "string", "format": "email"},
    "userPhone": {"type": "string", "maxLength": 32},
    "answers": `+answersSchema+`
  }
}`)

// ScoreSchema covers score and narrative requests that carry no identity.
var ScoreSchema = MustCompile("score", `{
  "type": "object",
  "required": ["track", "answers"],
  "properties": {
    "track": {"type": "string", "enum": ["mainboard", "sme", "MAINBOARD", "SME"]},
    "answers": `+answersSchema+`
  }
}`)

// AnswerSchema covers a single answer recorded against a session.
var AnswerSchema = MustCompile("answer", `{
  "type": "object",
  "required": ["sessionId", "questionId", "selectedLabel"],
  "properties": {
    "sessionId": {"type": "string", "minLength": 1},
    "questionId": {"type": "integer", "minimum": 1},
    "selectedLabel": {"type": "string", "minLength": 1}
  }
}`)

// UserEventSchema covers analytics events posted by the questionnaire. Older
// clients send the event body as payload instead of details.
var UserEventSchema = MustCompile("user-event", `{
  "type": "object",
  "required": ["eventType"],
  "properties": {
    "eventType": {"type": "string", "minLength": 1, "maxLength": 64},
    "sessionId": {"type": "string"},
    "track": {"type": "string"},
    "details": {"type": "object"},
    "payload": {"type": "object"},
    "timestamp": {"type": "string", "format": "date-time"}
  }
}`)
