package mailer

import (
	"context"
	"io"
	"testing"

	"github.com/mzielinski/usermgmt-backend/pkg/config"
	"github.com/mzielinski/usermgmt-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestNewDefaultsToLogSender(t *testing.T) {
	sender, err := New(config.MailerConfig{Driver: "log"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := sender.(*LogSender); !ok {
		t.Fatalf("expected LogSender, got %T", sender)
	}
}

func TestNewSESRequiresCredentials(t *testing.T) {
	_, err := New(config.MailerConfig{Driver: "ses"}, testLogger())
	if err == nil {
		t.Fatal("expected error without aws credentials")
	}
}

func TestLogSenderValidatesMessage(t *testing.T) {
	sender := NewLogSender(testLogger())

	if err := sender.Send(context.Background(), Message{Subject: "hi"}); err == nil {
		t.Fatal("expected error for message without recipients")
	}
	if err := sender.Send(context.Background(), Message{To: []string{"a@x.com"}}); err == nil {
		t.Fatal("expected error for message without subject")
	}
	if err := sender.Send(context.Background(), Message{To: []string{"a@x.com", " "}, Subject: "hi"}); err == nil {
		t.Fatal("expected error for blank recipient")
	}
	if err := sender.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "hi", TextBody: "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
