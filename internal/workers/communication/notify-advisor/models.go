// internal/workers/communication/notify-advisor/models.go
package notifyadvisor

type Input struct {
	ResponseID     string  `json:"responseId,omitempty"`
	Track          string  `json:"track"`
	UserName       string  `json:"userName"`
	UserEmail      string  `json:"userEmail"`
	UserPhone      string  `json:"userPhone,omitempty"`
	TotalScore     int     `json:"totalScore"`
	ReadinessScore float64 `json:"readinessScore"`
	ReadinessLabel string  `json:"readinessLabel"`
	ReportSent     bool    `json:"reportSent"`
}

type Output struct {
	Notified  bool   `json:"advisorNotified"`
	MessageID string `json:"advisorMessageId,omitempty"`
}
