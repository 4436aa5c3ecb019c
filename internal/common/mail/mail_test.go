package mail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock SES
// ==========================

type mockSES struct {
	sendFunc func(ctx context.Context, params *ses.SendEmailInput) (*ses.SendEmailOutput, error)
	calls    []*ses.SendEmailInput
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, params)
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func createTestEmail() models.Email {
	return models.Email{
		To:      "founder@example.com",
		CC:      []string{"advisory@example.com"},
		Subject: "SME IPO Readiness Assessment Report - Good IPO Readiness",
		HTML:    "<p>Dear Asha,</p>",
		Text:    "Dear Asha,",
	}
}

// ==========================
// SES Tests
// ==========================

func TestSESMailer_Send(t *testing.T) {
	client := &mockSES{}
	m := NewSESMailer(client, "reports@example.com", logger.NewNoOpLogger())

	require.NoError(t, m.Send(context.Background(), createTestEmail()))
	require.Len(t, client.calls, 1)

	in := client.calls[0]
	assert.Equal(t, "reports@example.com", aws.ToString(in.Source))
	assert.Equal(t, []string{"founder@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, []string{"advisory@example.com"}, in.Destination.CcAddresses)
	assert.Equal(t, "<p>Dear Asha,</p>", aws.ToString(in.Message.Body.Html.Data))
	assert.Equal(t, "Dear Asha,", aws.ToString(in.Message.Body.Text.Data))
}

func TestSESMailer_Send_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *models.Email)
		sendErr error
		errMsg  string
	}{
		{"invalid recipient", func(e *models.Email) { e.To = "not-an-email" }, nil, "invalid 'to'"},
		{"invalid cc", func(e *models.Email) { e.CC = []string{"bad"} }, nil, "invalid 'cc'"},
		{"empty subject", func(e *models.Email) { e.Subject = " " }, nil, "subject is required"},
		{"no body", func(e *models.Email) { e.HTML, e.Text = "", "" }, nil, "no body"},
		{"provider failure", func(e *models.Email) {}, fmt.Errorf("throttled"), "ses send email: throttled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSES{sendFunc: func(context.Context, *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
				if tt.sendErr != nil {
					return nil, tt.sendErr
				}
				return &ses.SendEmailOutput{}, nil
			}}
			m := NewSESMailer(client, "reports@example.com", logger.NewNoOpLogger())

			email := createTestEmail()
			tt.mutate(&email)
			err := m.Send(context.Background(), email)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// ==========================
// SMTP Tests
// ==========================

func TestNewSMTPMailer_Validation(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{Port: 587}, "reports@example.com", logger.NewNoOpLogger())
	assert.EqualError(t, err, "smtp host is required")

	_, err = NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 70000}, "reports@example.com", logger.NewNoOpLogger())
	assert.EqualError(t, err, "smtp port must be between 1 and 65535")

	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587}, "reports@example.com", logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSMTPMailer_Send_CancelledContext(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587}, "reports@example.com", logger.NewNoOpLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.Send(ctx, createTestEmail())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

// fakeSMTPServer speaks just enough SMTP for one plain-text delivery. With
// stall set it accepts connections and never sends the greeting.
type fakeSMTPServer struct {
	ln    net.Listener
	stall bool

	mu   sync.Mutex
	rcpt []string
	data string
}

func startFakeSMTP(t *testing.T, stall bool) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &fakeSMTPServer{ln: ln, stall: stall}
	t.Cleanup(func() { ln.Close() })
	go srv.serve()
	return srv
}

func (s *fakeSMTPServer) port() int { return s.ln.Addr().(*net.TCPAddr).Port }

func (s *fakeSMTPServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeSMTPServer) handle(conn net.Conn) {
	defer conn.Close()
	if s.stall {
		_, _ = bufio.NewReader(conn).ReadByte()
		return
	}

	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 fake ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			_ = tp.PrintfLine("250-fake")
			_ = tp.PrintfLine("250 8BITMIME")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			_ = tp.PrintfLine("250 ok")
		case strings.HasPrefix(cmd, "RCPT TO"):
			s.mu.Lock()
			s.rcpt = append(s.rcpt, line[len("RCPT TO:"):])
			s.mu.Unlock()
			_ = tp.PrintfLine("250 ok")
		case cmd == "DATA":
			_ = tp.PrintfLine("354 go ahead")
			body, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.data = string(body)
			s.mu.Unlock()
			_ = tp.PrintfLine("250 queued")
		case cmd == "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("502 not implemented")
		}
	}
}

func TestSMTPMailer_Send_Delivers(t *testing.T) {
	srv := startFakeSMTP(t, false)
	m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: srv.port()}, "reports@example.com", logger.NewNoOpLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Send(ctx, createTestEmail()))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, []string{"<founder@example.com>", "<advisory@example.com>"}, srv.rcpt)
	assert.Contains(t, srv.data, "Subject: SME IPO Readiness Assessment Report")
	assert.Contains(t, srv.data, "Dear Asha,")
}

func TestSMTPMailer_Send_StalledServerHonoursDeadline(t *testing.T) {
	srv := startFakeSMTP(t, true)
	m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: srv.port()}, "reports@example.com", logger.NewNoOpLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = m.Send(ctx, createTestEmail())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), err.Error())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestBuildMessage(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	msg, err := buildMessage("reports@example.com", createTestEmail(), now)
	require.NoError(t, err)

	s := string(msg)
	assert.Contains(t, s, "From: reports@example.com\r\n")
	assert.Contains(t, s, "To: founder@example.com\r\n")
	assert.Contains(t, s, "Cc: advisory@example.com\r\n")
	assert.Contains(t, s, "Subject: SME IPO Readiness Assessment Report - Good IPO Readiness\r\n")
	assert.Contains(t, s, "Content-Type: multipart/alternative; boundary=")

	text := strings.Index(s, "text/plain")
	html := strings.Index(s, "text/html")
	require.NotEqual(t, -1, text)
	require.NotEqual(t, -1, html)
	assert.Less(t, text, html, "plain part precedes html part")
	assert.Contains(t, s, "<p>Dear Asha,</p>")
}
