package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"

	paymentdomain "github.com/dirtfreecarpet/portal/internal/payment/domain"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_123","type":"payment_intent.succeeded","data":{"object":{}}}`)
	timestamp := time.Now().Unix()

	header := buildStripeSignatureHeader(secret, payload, timestamp)
	reqHeader := http.Header{}
	reqHeader.Set("Stripe-Signature", header)

	adapter := &Adapter{webhookSecret: secret}
	if err := adapter.Verify(context.Background(), payload, reqHeader); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	reqHeader.Set("Stripe-Signature", buildStripeSignatureHeader("wrong", payload, timestamp))
	if err := adapter.Verify(context.Background(), payload, reqHeader); err == nil {
		t.Fatalf("expected invalid signature error")
	}

	reqHeader.Del("Stripe-Signature")
	if err := adapter.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for missing header, got %v", err)
	}
}

func TestParsePaymentEvent(t *testing.T) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	customerID := node.Generate().String()
	invoiceID := node.Generate().String()
	created := time.Now().UTC().Unix()

	tests := []struct {
		name     string
		event    any
		wantType string
		amount   int64
	}{{
		name: "payment_intent.succeeded",
		event: map[string]any{
			"id":      "evt_pi",
			"type":    "payment_intent.succeeded",
			"created": created,
			"data": map[string]any{
				"object": map[string]any{
					"id":              "pi_1",
					"amount":          25000,
					"amount_received": 25000,
					"currency":        "usd",
					"created":         created,
					"metadata": map[string]any{
						"customer_id": customerID,
						"invoice_id":  invoiceID,
					},
				},
			},
		},
		wantType: paymentdomain.EventTypePaymentSucceeded,
		amount:   25000,
	}, {
		name: "payment_intent.payment_failed",
		event: map[string]any{
			"id":      "evt_pi_failed",
			"type":    "payment_intent.payment_failed",
			"created": created,
			"data": map[string]any{
				"object": map[string]any{
					"id":       "pi_2",
					"amount":   5000,
					"currency": "usd",
					"created":  created,
					"metadata": map[string]any{
						"customer_id": customerID,
						"invoice_id":  invoiceID,
					},
					"last_payment_error": map[string]any{
						"code":    "card_declined",
						"message": "Your card was declined.",
					},
				},
			},
		},
		wantType: paymentdomain.EventTypePaymentFailed,
		amount:   5000,
	}}

	adapter := &Adapter{webhookSecret: "whsec_test"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("marshal payload: %v", err)
			}
			event, err := adapter.Parse(context.Background(), payload)
			if err != nil {
				t.Fatalf("parse event: %v", err)
			}
			if event.Type != tt.wantType {
				t.Fatalf("expected type %s, got %s", tt.wantType, event.Type)
			}
			if event.Amount != tt.amount {
				t.Fatalf("expected amount %d, got %d", tt.amount, event.Amount)
			}
			if event.CustomerID == 0 {
				t.Fatalf("expected customer ID")
			}
			if event.InvoiceID == nil {
				t.Fatalf("expected invoice ID")
			}
			if event.Currency != "USD" {
				t.Fatalf("expected currency USD, got %s", event.Currency)
			}
		})
	}
}

func TestParseFailureDetail(t *testing.T) {
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	payload, err := json.Marshal(map[string]any{
		"id":   "evt_failed",
		"type": "payment_intent.payment_failed",
		"data": map[string]any{
			"object": map[string]any{
				"id":       "pi_3",
				"amount":   1000,
				"currency": "usd",
				"created":  time.Now().UTC().Unix(),
				"metadata": map[string]any{
					"customer_id": node.Generate().String(),
				},
				"last_payment_error": map[string]any{
					"code":    "insufficient_funds",
					"message": "",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	adapter := &Adapter{webhookSecret: "whsec_test"}
	event, err := adapter.Parse(context.Background(), payload)
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if event.FailureDetail != "insufficient_funds" {
		t.Fatalf("expected failure detail from error code, got %q", event.FailureDetail)
	}
}

func TestParseIgnoresUnknownEventTypes(t *testing.T) {
	adapter := &Adapter{webhookSecret: "whsec_test"}
	payload := []byte(`{"id":"evt_sub","type":"customer.subscription.created","data":{"object":{}}}`)

	_, err := adapter.Parse(context.Background(), payload)
	if !errors.Is(err, paymentdomain.ErrEventIgnored) {
		t.Fatalf("expected ErrEventIgnored, got %v", err)
	}
}

func buildStripeSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}
