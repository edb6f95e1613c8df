package paystack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Fidel-C/smartpaystack/pkg/enums"
	pkgerrors "github.com/Fidel-C/smartpaystack/pkg/errors"
)

// Plan is the plan record Paystack returns. Amount is in the minor
// currency unit (kobo for NGN), as sent on the wire.
type Plan struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	PlanCode    string         `json:"plan_code"`
	Description string         `json:"description"`
	Amount      int64          `json:"amount"`
	Interval    enums.Interval `json:"interval"`
	Currency    enums.Currency `json:"currency"`
}

// PlanCreateParams describes a plan to create. Amount is in the major
// currency unit; the client converts to the minor unit on the wire.
type PlanCreateParams struct {
	Name        string
	Amount      decimal.Decimal
	Interval    enums.Interval
	Currency    enums.Currency
	Description string
}

func (p PlanCreateParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "plan name is required")
	}
	if !p.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "plan amount must be positive")
	}
	if !p.Interval.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid interval %q", p.Interval))
	}
	if p.Currency != "" && !p.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", p.Currency))
	}
	return nil
}

func (p PlanCreateParams) toWire() map[string]any {
	payload := map[string]any{
		"name": strings.TrimSpace(p.Name),
		// major -> minor unit
		"amount":   p.Amount.Shift(2).IntPart(),
		"interval": p.Interval.String(),
	}
	if p.Currency != "" {
		payload["currency"] = p.Currency.String()
	}
	if desc := strings.TrimSpace(p.Description); desc != "" {
		payload["description"] = desc
	}
	return payload
}

// CreatePlan registers a new plan with Paystack.
func (c *Client) CreatePlan(ctx context.Context, params PlanCreateParams) (*Plan, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	envelope, err := c.call(ctx, "create_plan", http.MethodPost, "plan", params.toWire())
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal(envelope.Normalize(), &plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode plan payload")
	}
	return &plan, nil
}

// GetPlan fetches a plan by its code.
func (c *Client) GetPlan(ctx context.Context, planCode string) (*Plan, error) {
	trimmed := strings.TrimSpace(planCode)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan code is required")
	}

	envelope, err := c.call(ctx, "get_plan", http.MethodGet, "plan/"+url.PathEscape(trimmed), nil)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal(envelope.Normalize(), &plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode plan payload")
	}
	return &plan, nil
}

// ListPlans fetches the plans registered on the integration.
func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	envelope, err := c.call(ctx, "list_plans", http.MethodGet, "plan", nil)
	if err != nil {
		return nil, err
	}

	var plans []Plan
	if err := json.Unmarshal(envelope.Normalize(), &plans); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode plan list payload")
	}
	return plans, nil
}

// UpdatePlan mutates an existing plan. Paystack acknowledges updates
// with a bare status/message envelope.
func (c *Client) UpdatePlan(ctx context.Context, planCode string, params PlanCreateParams) (*StateChange, error) {
	trimmed := strings.TrimSpace(planCode)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan code is required")
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	envelope, err := c.call(ctx, "update_plan", http.MethodPut, "plan/"+url.PathEscape(trimmed), params.toWire())
	if err != nil {
		return nil, err
	}

	return decodeStateChange(envelope)
}
