package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Fidel-C/smartpaystack/pkg/enums"
	pkgerrors "github.com/Fidel-C/smartpaystack/pkg/errors"
)

// Subscription is the subscription record Paystack returns. Customer
// and Plan are kept raw: create responds with integer ids while fetch
// expands them into objects.
type Subscription struct {
	ID               int64                    `json:"id"`
	Customer         json.RawMessage          `json:"customer"`
	Plan             json.RawMessage          `json:"plan"`
	SubscriptionCode string                   `json:"subscription_code"`
	EmailToken       string                   `json:"email_token"`
	Status           enums.SubscriptionStatus `json:"status"`
	Amount           int64                    `json:"amount"`
	NextPaymentDate  *time.Time               `json:"next_payment_date"`
}

// CustomerEmail extracts the customer email when the customer field
// was expanded into an object. Returns "" for integer ids.
func (s *Subscription) CustomerEmail() string {
	var customer struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(s.Customer, &customer); err != nil {
		return ""
	}
	return customer.Email
}

// PlanCode extracts the plan code when the plan field was expanded
// into an object. Returns "" for integer ids.
func (s *Subscription) PlanCode() string {
	var plan struct {
		PlanCode string `json:"plan_code"`
	}
	if err := json.Unmarshal(s.Plan, &plan); err != nil {
		return ""
	}
	return plan.PlanCode
}

// SubscriptionCreateParams describes a subscription to create. The
// customer email resolves to the `customer` wire field.
type SubscriptionCreateParams struct {
	CustomerEmail string
	PlanCode      string
	Authorization string
	StartDate     *time.Time
}

func (p SubscriptionCreateParams) validate() error {
	if strings.TrimSpace(p.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if strings.TrimSpace(p.PlanCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "plan code is required")
	}
	return nil
}

func (p SubscriptionCreateParams) toWire() map[string]any {
	payload := map[string]any{
		"customer": strings.TrimSpace(p.CustomerEmail),
		"plan":     strings.TrimSpace(p.PlanCode),
	}
	if auth := strings.TrimSpace(p.Authorization); auth != "" {
		payload["authorization"] = auth
	}
	if p.StartDate != nil {
		payload["start_date"] = p.StartDate.UTC().Format(time.RFC3339)
	}
	return payload
}

// StateChange is the decoded acknowledgement of an enable/disable
// toggle. When the API omits data, the normalized envelope supplies
// status and message.
type StateChange struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// CreateSubscription subscribes a customer to a plan.
func (c *Client) CreateSubscription(ctx context.Context, params SubscriptionCreateParams) (*Subscription, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	envelope, err := c.call(ctx, "create_subscription", http.MethodPost, "subscription", params.toWire())
	if err != nil {
		return nil, err
	}

	var sub Subscription
	if err := json.Unmarshal(envelope.Normalize(), &sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription payload")
	}
	return &sub, nil
}

// GetSubscription fetches a subscription by its code.
func (c *Client) GetSubscription(ctx context.Context, subscriptionCode string) (*Subscription, error) {
	trimmed := strings.TrimSpace(subscriptionCode)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription code is required")
	}

	envelope, err := c.call(ctx, "get_subscription", http.MethodGet, "subscription/"+url.PathEscape(trimmed), nil)
	if err != nil {
		return nil, err
	}

	var sub Subscription
	if err := json.Unmarshal(envelope.Normalize(), &sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription payload")
	}
	return &sub, nil
}

// ListSubscriptions fetches the subscriptions on the integration.
func (c *Client) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	envelope, err := c.call(ctx, "list_subscriptions", http.MethodGet, "subscription", nil)
	if err != nil {
		return nil, err
	}

	var subs []Subscription
	if err := json.Unmarshal(envelope.Normalize(), &subs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription list payload")
	}
	return subs, nil
}

// EnableSubscription turns a subscription back on. The email token
// authorizes the state change.
func (c *Client) EnableSubscription(ctx context.Context, subscriptionCode, emailToken string) (*StateChange, error) {
	return c.toggleSubscription(ctx, "enable_subscription", "subscription/enable", subscriptionCode, emailToken)
}

// DisableSubscription turns a subscription off at period end.
func (c *Client) DisableSubscription(ctx context.Context, subscriptionCode, emailToken string) (*StateChange, error) {
	return c.toggleSubscription(ctx, "disable_subscription", "subscription/disable", subscriptionCode, emailToken)
}

func (c *Client) toggleSubscription(ctx context.Context, op, path, subscriptionCode, emailToken string) (*StateChange, error) {
	code := strings.TrimSpace(subscriptionCode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription code is required")
	}
	token := strings.TrimSpace(emailToken)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email token is required")
	}

	payload := map[string]any{
		"code":  code,
		"token": token,
	}

	envelope, err := c.call(ctx, op, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	return decodeStateChange(envelope)
}

func decodeStateChange(envelope Envelope) (*StateChange, error) {
	var change StateChange
	if err := json.Unmarshal(envelope.Normalize(), &change); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode state change payload")
	}
	return &change, nil
}
