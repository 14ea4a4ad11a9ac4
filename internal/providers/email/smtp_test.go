package email

import (
	"context"
	"testing"
)

func TestSendRejectsEmptyRecipients(t *testing.T) {
	p := NewSMTP(Config{Host: "localhost", Port: 2525, From: "noreply@example.com"})

	err := p.Send(context.Background(), nil, "Receipt", "<p>hi</p>")
	if err == nil {
		t.Fatalf("expected error for empty recipient list")
	}
}
