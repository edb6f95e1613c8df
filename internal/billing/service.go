package billing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Fidel-C/smartpaystack/pkg/config"
	"github.com/Fidel-C/smartpaystack/pkg/db"
	"github.com/Fidel-C/smartpaystack/pkg/db/models"
	"github.com/Fidel-C/smartpaystack/pkg/enums"
	pkgerrors "github.com/Fidel-C/smartpaystack/pkg/errors"
	"github.com/Fidel-C/smartpaystack/pkg/logger"
	"github.com/Fidel-C/smartpaystack/pkg/paystack"
)

const plansCacheScope = "plans"

// Gateway is the slice of the Paystack API the billing service uses.
type Gateway interface {
	CreatePlan(ctx context.Context, params paystack.PlanCreateParams) (*paystack.Plan, error)
	GetPlan(ctx context.Context, planCode string) (*paystack.Plan, error)
	CreateSubscription(ctx context.Context, params paystack.SubscriptionCreateParams) (*paystack.Subscription, error)
	GetSubscription(ctx context.Context, subscriptionCode string) (*paystack.Subscription, error)
	EnableSubscription(ctx context.Context, subscriptionCode, emailToken string) (*paystack.StateChange, error)
	DisableSubscription(ctx context.Context, subscriptionCode, emailToken string) (*paystack.StateChange, error)
}

// Cache is the slice of the redis client the billing service uses.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// ServiceParams groups dependencies for the billing service.
type ServiceParams struct {
	Repo    Repository
	Gateway Gateway
	Cache   Cache
	Logger  *logger.Logger
	Config  config.BillingConfig
}

// Service orchestrates billing operations: plans and subscriptions are
// created at the payment gateway first, then mirrored locally.
type Service struct {
	repo    Repository
	gateway Gateway
	cache   Cache
	logger  *logger.Logger
	cfg     config.BillingConfig
}

// NewService builds a billing service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Gateway == nil {
		return nil, errors.New("gateway is required")
	}
	return &Service{
		repo:    params.Repo,
		gateway: params.Gateway,
		cache:   params.Cache,
		logger:  params.Logger,
		cfg:     params.Config,
	}, nil
}

// CreatePlanParams describes a plan to create. Amount is in the major
// currency unit.
type CreatePlanParams struct {
	Name        string
	Amount      decimal.Decimal
	Interval    enums.Interval
	Currency    enums.Currency
	Description string
}

// CreatePlan registers the plan at the gateway and mirrors it locally.
func (s *Service) CreatePlan(ctx context.Context, params CreatePlanParams) (*models.Plan, error) {
	remote, err := s.gateway.CreatePlan(ctx, paystack.PlanCreateParams{
		Name:        params.Name,
		Amount:      params.Amount,
		Interval:    params.Interval,
		Currency:    params.Currency,
		Description: params.Description,
	})
	if err != nil {
		return nil, err
	}

	plan := planFromRemote(remote)
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "plan already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist plan")
	}

	s.invalidatePlansCache(ctx)
	return plan, nil
}

// ListPlans returns the local plan catalog through a read-through cache.
func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	if s.cache != nil {
		key := s.cache.CacheKey(plansCacheScope)
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var plans []models.Plan
			if err := json.Unmarshal([]byte(raw), &plans); err == nil {
				return plans, nil
			}
			// stale or corrupt entry, drop it
			_ = s.cache.Del(ctx, key)
		}
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plans")
	}

	if s.cache != nil {
		if raw, err := json.Marshal(plans); err == nil {
			_ = s.cache.Set(ctx, s.cache.CacheKey(plansCacheScope), string(raw), s.cfg.PlanCacheTTL)
		}
	}
	return plans, nil
}

// GetPlan returns the local plan, falling back to the gateway and
// mirroring the record when it is not known yet.
func (s *Service) GetPlan(ctx context.Context, planCode string) (*models.Plan, error) {
	code := strings.TrimSpace(planCode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan code is required")
	}

	plan, err := s.repo.FindPlanByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find plan")
	}
	if plan != nil {
		return plan, nil
	}

	remote, err := s.gateway.GetPlan(ctx, code)
	if err != nil {
		return nil, err
	}

	plan = planFromRemote(remote)
	if err := s.repo.CreatePlan(ctx, plan); err != nil && !db.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist plan")
	}
	s.invalidatePlansCache(ctx)
	return plan, nil
}

// CreateSubscriptionParams describes a subscription to create.
type CreateSubscriptionParams struct {
	CustomerEmail string
	PlanCode      string
}

// CreateSubscription subscribes the customer at the gateway and mirrors
// the subscription locally, keeping the email token for later toggles.
func (s *Service) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*models.Subscription, error) {
	if _, err := s.GetPlan(ctx, params.PlanCode); err != nil {
		return nil, err
	}

	remote, err := s.gateway.CreateSubscription(ctx, paystack.SubscriptionCreateParams{
		CustomerEmail: params.CustomerEmail,
		PlanCode:      params.PlanCode,
	})
	if err != nil {
		return nil, err
	}

	status := remote.Status
	if status == "" {
		status = enums.SubscriptionStatusActive
	}
	sub := &models.Subscription{
		CustomerEmail:    strings.TrimSpace(params.CustomerEmail),
		PlanCode:         strings.TrimSpace(params.PlanCode),
		SubscriptionCode: remote.SubscriptionCode,
		EmailToken:       remote.EmailToken,
		Status:           status,
		NextPaymentAt:    remote.NextPaymentDate,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "subscription already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist subscription")
	}
	return sub, nil
}

// GetSubscription returns the mirrored subscription, fetching and
// mirroring from the gateway when the local copy is missing.
func (s *Service) GetSubscription(ctx context.Context, subscriptionCode string) (*models.Subscription, error) {
	code := strings.TrimSpace(subscriptionCode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription code is required")
	}
	sub, err := s.repo.FindSubscriptionByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find subscription")
	}
	if sub != nil {
		return sub, nil
	}

	remote, err := s.gateway.GetSubscription(ctx, code)
	if err != nil {
		return nil, err
	}

	status := remote.Status
	if status == "" {
		status = enums.SubscriptionStatusActive
	}
	sub = &models.Subscription{
		CustomerEmail:    remote.CustomerEmail(),
		PlanCode:         remote.PlanCode(),
		SubscriptionCode: remote.SubscriptionCode,
		EmailToken:       remote.EmailToken,
		Status:           status,
		NextPaymentAt:    remote.NextPaymentDate,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil && !db.IsUniqueViolation(err, "") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist subscription")
	}
	return sub, nil
}

// ListSubscriptions returns mirrored subscriptions, optionally filtered
// by customer email.
func (s *Service) ListSubscriptions(ctx context.Context, customerEmail string) ([]models.Subscription, error) {
	subs, err := s.repo.ListSubscriptions(ctx, strings.TrimSpace(customerEmail))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subscriptions")
	}
	return subs, nil
}

// EnableSubscription re-activates a subscription using the stored email token.
func (s *Service) EnableSubscription(ctx context.Context, subscriptionCode string) (*paystack.StateChange, error) {
	return s.toggleSubscription(ctx, subscriptionCode, true)
}

// DisableSubscription stops renewal of a subscription using the stored email token.
func (s *Service) DisableSubscription(ctx context.Context, subscriptionCode string) (*paystack.StateChange, error) {
	return s.toggleSubscription(ctx, subscriptionCode, false)
}

func (s *Service) toggleSubscription(ctx context.Context, subscriptionCode string, enable bool) (*paystack.StateChange, error) {
	sub, err := s.GetSubscription(ctx, subscriptionCode)
	if err != nil {
		return nil, err
	}

	var change *paystack.StateChange
	if enable {
		change, err = s.gateway.EnableSubscription(ctx, sub.SubscriptionCode, sub.EmailToken)
	} else {
		change, err = s.gateway.DisableSubscription(ctx, sub.SubscriptionCode, sub.EmailToken)
	}
	if err != nil {
		return nil, err
	}

	if enable {
		sub.Status = enums.SubscriptionStatusActive
	} else {
		sub.Status = enums.SubscriptionStatusNonRenewing
	}
	if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update subscription status")
	}
	return change, nil
}

func (s *Service) invalidatePlansCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.CacheKey(plansCacheScope)); err != nil && s.logger != nil {
		s.logger.Warn(ctx, "failed to invalidate plans cache")
	}
}

func planFromRemote(remote *paystack.Plan) *models.Plan {
	plan := &models.Plan{
		Name:     remote.Name,
		PlanCode: remote.PlanCode,
		Interval: remote.Interval,
		// minor -> major unit
		Amount:   decimal.NewFromInt(remote.Amount).Shift(-2),
		Currency: remote.Currency,
	}
	if remote.Currency == "" {
		plan.Currency = enums.CurrencyNGN
	}
	if desc := strings.TrimSpace(remote.Description); desc != "" {
		plan.Description = &desc
	}
	return plan
}
