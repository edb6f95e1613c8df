package paystack

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/Fidel-C/smartpaystack/pkg/errors"
)

const testSecretKey = "sk_test_fake_secret_key"

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(testSecretKey, WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestNewClientRequiresSecretKey(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatal("expected error for empty secret key")
	}
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank secret key")
	}
}

func TestClientSendsBearerAuth(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		gotAuth = req.Header.Get("Authorization")
		return jsonResponse(http.StatusOK, `{"status":true,"message":"Plans retrieved","data":[]}`), nil
	})

	if _, err := client.ListPlans(context.Background()); err != nil {
		t.Fatalf("ListPlans returned error: %v", err)
	}
	if gotAuth != "Bearer "+testSecretKey {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}
}

func TestClientMapsHTTPStatusToErrorCode(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   pkgerrors.Code
	}{
		{"unauthorized", http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{"not found", http.StatusNotFound, pkgerrors.CodeNotFound},
		{"conflict", http.StatusConflict, pkgerrors.CodeConflict},
		{"rate limited", http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{"bad request", http.StatusBadRequest, pkgerrors.CodeValidation},
		{"server error", http.StatusInternalServerError, pkgerrors.CodeDependency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, `{"status":false,"message":"nope"}`), nil
			})

			_, err := client.ListPlans(context.Background())
			if err == nil {
				t.Fatalf("expected error for status %d", tc.status)
			}
			domainErr := pkgerrors.As(err)
			if domainErr == nil {
				t.Fatalf("expected domain error, got %T: %v", err, err)
			}
			if domainErr.Code() != tc.want {
				t.Fatalf("expected code %s, got %s", tc.want, domainErr.Code())
			}
		})
	}
}

func TestClientRejectsFalseEnvelopeStatus(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"status":false,"message":"Invalid plan code"}`), nil
	})

	_, err := client.GetPlan(context.Background(), "PLN_missing")
	if err == nil {
		t.Fatal("expected error for status=false envelope")
	}
	if !strings.Contains(err.Error(), "Invalid plan code") {
		t.Fatalf("expected the API message in the error, got %v", err)
	}
}

func TestClientBuildsURLAgainstBaseURL(t *testing.T) {
	var gotURL string
	client, err := NewClient(testSecretKey,
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			gotURL = req.URL.String()
			return jsonResponse(http.StatusOK, `{"status":true,"message":"ok","data":[]}`), nil
		})}),
		WithBaseURL("https://sandbox.example.com/"),
	)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if _, err := client.ListSubscriptions(context.Background()); err != nil {
		t.Fatalf("ListSubscriptions returned error: %v", err)
	}
	if gotURL != "https://sandbox.example.com/subscription" {
		t.Fatalf("unexpected request URL %q", gotURL)
	}
}

func TestRedactHidesSensitiveFields(t *testing.T) {
	if got := redact("email_token", "e7x1bejv"); got != "[REDACTED]" {
		t.Fatalf("expected token value to be redacted, got %v", got)
	}
	if got := redact("customer", "buyer@example.com"); got != "[REDACTED]" {
		t.Fatalf("expected customer value to be redacted, got %v", got)
	}
	if got := redact("plan", "PLN_x"); got != "PLN_x" {
		t.Fatalf("expected plan value untouched, got %v", got)
	}
}
