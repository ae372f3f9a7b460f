package mailer

import (
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
)

func TestSendReport_Disabled(t *testing.T) {
	m := New(Config{Enabled: false}, slog.New(slog.DiscardHandler))

	sent, err := m.SendReport("s", "b")
	if err != nil || sent {
		t.Errorf("disabled mailer must be a no-op, got sent=%v err=%v", sent, err)
	}
}

func TestSendReport_IncompleteConfig(t *testing.T) {
	m := New(Config{Enabled: true, Host: "smtp.example.com"}, slog.New(slog.DiscardHandler))

	sent, err := m.SendReport("s", "b")
	if err != nil || sent {
		t.Errorf("incomplete config must skip silently, got sent=%v err=%v", sent, err)
	}
}

func TestSendReport_TestModeFirstRecipientOnly(t *testing.T) {
	var gotTo []string
	var gotMsg string

	m := New(Config{
		Enabled:  true,
		TestMode: true,
		Host:     "smtp.example.com",
		Port:     587,
		From:     "bot@example.com",
		To:       []string{"a@example.com", "b@example.com"},
	}, slog.New(slog.DiscardHandler))
	m.send = func(_ string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	sent, err := m.SendReport("hello", "the report")
	if err != nil || !sent {
		t.Fatalf("expected send, got sent=%v err=%v", sent, err)
	}
	if len(gotTo) != 1 || gotTo[0] != "a@example.com" {
		t.Errorf("test mode must send to the first recipient only, got %v", gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: hello") || !strings.Contains(gotMsg, "the report") {
		t.Errorf("unexpected message body:\n%s", gotMsg)
	}
}
