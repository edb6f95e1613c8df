package billing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Fidel-C/smartpaystack/pkg/config"
	"github.com/Fidel-C/smartpaystack/pkg/db/models"
	"github.com/Fidel-C/smartpaystack/pkg/enums"
	pkgerrors "github.com/Fidel-C/smartpaystack/pkg/errors"
	"github.com/Fidel-C/smartpaystack/pkg/paystack"
)

type stubRepo struct {
	plans         map[string]*models.Plan
	subscriptions map[string]*models.Subscription
	updated       []*models.Subscription
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		plans:         make(map[string]*models.Plan),
		subscriptions: make(map[string]*models.Subscription),
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreatePlan(ctx context.Context, plan *models.Plan) error {
	s.plans[plan.PlanCode] = plan
	return nil
}

func (s *stubRepo) UpdatePlan(ctx context.Context, plan *models.Plan) error {
	s.plans[plan.PlanCode] = plan
	return nil
}

func (s *stubRepo) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	for _, p := range s.plans {
		plans = append(plans, *p)
	}
	return plans, nil
}

func (s *stubRepo) FindPlanByCode(ctx context.Context, planCode string) (*models.Plan, error) {
	return s.plans[planCode], nil
}

func (s *stubRepo) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	s.subscriptions[sub.SubscriptionCode] = sub
	return nil
}

func (s *stubRepo) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	s.subscriptions[sub.SubscriptionCode] = sub
	s.updated = append(s.updated, sub)
	return nil
}

func (s *stubRepo) ListSubscriptions(ctx context.Context, customerEmail string) ([]models.Subscription, error) {
	var subs []models.Subscription
	for _, sub := range s.subscriptions {
		if customerEmail == "" || sub.CustomerEmail == customerEmail {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (s *stubRepo) FindSubscriptionByCode(ctx context.Context, code string) (*models.Subscription, error) {
	return s.subscriptions[code], nil
}

type stubGateway struct {
	createPlanFn  func(ctx context.Context, params paystack.PlanCreateParams) (*paystack.Plan, error)
	getPlanFn     func(ctx context.Context, planCode string) (*paystack.Plan, error)
	createSubFn   func(ctx context.Context, params paystack.SubscriptionCreateParams) (*paystack.Subscription, error)
	getSubFn      func(ctx context.Context, subscriptionCode string) (*paystack.Subscription, error)
	toggleCalls   []string
	toggledTokens []string
}

func (s *stubGateway) CreatePlan(ctx context.Context, params paystack.PlanCreateParams) (*paystack.Plan, error) {
	if s.createPlanFn != nil {
		return s.createPlanFn(ctx, params)
	}
	return &paystack.Plan{
		Name:     params.Name,
		PlanCode: "PLN_gx2wn530m0i3w3m",
		Amount:   params.Amount.Shift(2).IntPart(),
		Interval: params.Interval,
		Currency: params.Currency,
	}, nil
}

func (s *stubGateway) GetPlan(ctx context.Context, planCode string) (*paystack.Plan, error) {
	if s.getPlanFn != nil {
		return s.getPlanFn(ctx, planCode)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
}

func (s *stubGateway) CreateSubscription(ctx context.Context, params paystack.SubscriptionCreateParams) (*paystack.Subscription, error) {
	if s.createSubFn != nil {
		return s.createSubFn(ctx, params)
	}
	return &paystack.Subscription{
		SubscriptionCode: "SUB_vsy1egv220",
		EmailToken:       "e7x1bejv",
		Status:           enums.SubscriptionStatusActive,
	}, nil
}

func (s *stubGateway) GetSubscription(ctx context.Context, subscriptionCode string) (*paystack.Subscription, error) {
	if s.getSubFn != nil {
		return s.getSubFn(ctx, subscriptionCode)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}

func (s *stubGateway) EnableSubscription(ctx context.Context, code, token string) (*paystack.StateChange, error) {
	s.toggleCalls = append(s.toggleCalls, "enable:"+code)
	s.toggledTokens = append(s.toggledTokens, token)
	return &paystack.StateChange{Status: true, Message: "Subscription enabled successfully"}, nil
}

func (s *stubGateway) DisableSubscription(ctx context.Context, code, token string) (*paystack.StateChange, error) {
	s.toggleCalls = append(s.toggleCalls, "disable:"+code)
	s.toggledTokens = append(s.toggledTokens, token)
	return &paystack.StateChange{Status: true, Message: "Subscription disabled successfully"}, nil
}

type stubCache struct {
	data map[string]string
	sets int
	dels int
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string]string)}
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	return s.data[key], nil
}

func (s *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.data[key] = value.(string)
	s.sets++
	return nil
}

func (s *stubCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	s.dels++
	return nil
}

func (s *stubCache) CacheKey(parts ...string) string {
	key := "sps:cache"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func newTestService(t *testing.T, repo Repository, gateway Gateway, cache Cache) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Gateway: gateway,
		Cache:   cache,
		Config:  config.BillingConfig{PlanCacheTTL: time.Minute},
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestServiceRequiresRepoAndGateway(t *testing.T) {
	if _, err := NewService(ServiceParams{Gateway: &stubGateway{}}); err == nil {
		t.Fatal("expected error without repo")
	}
	if _, err := NewService(ServiceParams{Repo: newStubRepo()}); err == nil {
		t.Fatal("expected error without gateway")
	}
}

func TestCreatePlanMirrorsRemoteAndInvalidatesCache(t *testing.T) {
	repo := newStubRepo()
	cache := newStubCache()
	cache.data["sps:cache:plans"] = "[]"
	svc := newTestService(t, repo, &stubGateway{}, cache)

	plan, err := svc.CreatePlan(context.Background(), CreatePlanParams{
		Name:     "Monthly Retainer",
		Amount:   decimal.NewFromInt(10000),
		Interval: enums.IntervalMonthly,
		Currency: enums.CurrencyNGN,
	})
	if err != nil {
		t.Fatalf("CreatePlan returned error: %v", err)
	}

	if plan.PlanCode != "PLN_gx2wn530m0i3w3m" {
		t.Fatalf("unexpected plan code %q", plan.PlanCode)
	}
	if !plan.Amount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected major-unit amount 10000, got %s", plan.Amount)
	}
	if repo.plans["PLN_gx2wn530m0i3w3m"] == nil {
		t.Fatal("plan was not persisted")
	}
	if cache.dels == 0 {
		t.Fatal("plans cache was not invalidated")
	}
}

func TestListPlansCachesResult(t *testing.T) {
	repo := newStubRepo()
	repo.plans["PLN_a"] = &models.Plan{Name: "A", PlanCode: "PLN_a", Interval: enums.IntervalMonthly, Amount: decimal.NewFromInt(100)}
	cache := newStubCache()
	svc := newTestService(t, repo, &stubGateway{}, cache)

	plans, err := svc.ListPlans(context.Background())
	if err != nil {
		t.Fatalf("ListPlans returned error: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(plans))
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache write, got %d sets", cache.sets)
	}

	// second read must come from the cache
	delete(repo.plans, "PLN_a")
	plans, err = svc.ListPlans(context.Background())
	if err != nil {
		t.Fatalf("ListPlans returned error: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("expected cached plan, got %d", len(plans))
	}
}

func TestGetPlanFallsBackToGateway(t *testing.T) {
	repo := newStubRepo()
	gateway := &stubGateway{
		getPlanFn: func(ctx context.Context, planCode string) (*paystack.Plan, error) {
			return &paystack.Plan{
				Name:     "Remote",
				PlanCode: planCode,
				Amount:   1000000,
				Interval: enums.IntervalMonthly,
				Currency: enums.CurrencyNGN,
			}, nil
		},
	}
	svc := newTestService(t, repo, gateway, nil)

	plan, err := svc.GetPlan(context.Background(), "PLN_gx2wn530m0i3w3m")
	if err != nil {
		t.Fatalf("GetPlan returned error: %v", err)
	}
	if !plan.Amount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected 1000000 minor units to mirror as 10000, got %s", plan.Amount)
	}
	if repo.plans["PLN_gx2wn530m0i3w3m"] == nil {
		t.Fatal("remote plan was not mirrored locally")
	}
}

func TestGetPlanValidatesCode(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubGateway{}, nil)
	_, err := svc.GetPlan(context.Background(), "  ")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSubscriptionStoresEmailToken(t *testing.T) {
	repo := newStubRepo()
	repo.plans["PLN_gx2wn530m0i3w3m"] = &models.Plan{PlanCode: "PLN_gx2wn530m0i3w3m", Interval: enums.IntervalMonthly, Amount: decimal.NewFromInt(10000)}
	svc := newTestService(t, repo, &stubGateway{}, nil)

	sub, err := svc.CreateSubscription(context.Background(), CreateSubscriptionParams{
		CustomerEmail: "buyer@example.com",
		PlanCode:      "PLN_gx2wn530m0i3w3m",
	})
	if err != nil {
		t.Fatalf("CreateSubscription returned error: %v", err)
	}
	if sub.SubscriptionCode != "SUB_vsy1egv220" {
		t.Fatalf("unexpected subscription code %q", sub.SubscriptionCode)
	}
	if sub.EmailToken != "e7x1bejv" {
		t.Fatalf("email token was not stored, got %q", sub.EmailToken)
	}
	if sub.Status != enums.SubscriptionStatusActive {
		t.Fatalf("unexpected status %q", sub.Status)
	}
}

func TestCreateSubscriptionRejectsUnknownPlan(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubGateway{}, nil)

	_, err := svc.CreateSubscription(context.Background(), CreateSubscriptionParams{
		CustomerEmail: "buyer@example.com",
		PlanCode:      "PLN_missing",
	})
	if err == nil {
		t.Fatal("expected error for unknown plan")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestToggleSubscriptionUsesStoredToken(t *testing.T) {
	repo := newStubRepo()
	repo.subscriptions["SUB_vsy1egv220"] = &models.Subscription{
		CustomerEmail:    "buyer@example.com",
		PlanCode:         "PLN_gx2wn530m0i3w3m",
		SubscriptionCode: "SUB_vsy1egv220",
		EmailToken:       "e7x1bejv",
		Status:           enums.SubscriptionStatusActive,
	}
	gateway := &stubGateway{}
	svc := newTestService(t, repo, gateway, nil)

	change, err := svc.DisableSubscription(context.Background(), "SUB_vsy1egv220")
	if err != nil {
		t.Fatalf("DisableSubscription returned error: %v", err)
	}
	if change.Message != "Subscription disabled successfully" {
		t.Fatalf("unexpected message %q", change.Message)
	}
	if len(gateway.toggledTokens) != 1 || gateway.toggledTokens[0] != "e7x1bejv" {
		t.Fatalf("stored email token was not used: %v", gateway.toggledTokens)
	}
	if repo.subscriptions["SUB_vsy1egv220"].Status != enums.SubscriptionStatusNonRenewing {
		t.Fatalf("status not updated after disable: %q", repo.subscriptions["SUB_vsy1egv220"].Status)
	}

	change, err = svc.EnableSubscription(context.Background(), "SUB_vsy1egv220")
	if err != nil {
		t.Fatalf("EnableSubscription returned error: %v", err)
	}
	if change.Message != "Subscription enabled successfully" {
		t.Fatalf("unexpected message %q", change.Message)
	}
	if repo.subscriptions["SUB_vsy1egv220"].Status != enums.SubscriptionStatusActive {
		t.Fatalf("status not updated after enable: %q", repo.subscriptions["SUB_vsy1egv220"].Status)
	}
}

func TestGetSubscriptionRemoteFallback(t *testing.T) {
	repo := newStubRepo()
	gateway := &stubGateway{
		getSubFn: func(ctx context.Context, code string) (*paystack.Subscription, error) {
			return &paystack.Subscription{
				Customer:         json.RawMessage(`{"email":"member@example.com"}`),
				Plan:             json.RawMessage(`{"plan_code":"PLN_gx2wn530m0i3w3m"}`),
				SubscriptionCode: code,
				EmailToken:       "e7x1bejv",
				Status:           enums.SubscriptionStatusActive,
			}, nil
		},
	}
	svc := newTestService(t, repo, gateway, nil)

	sub, err := svc.GetSubscription(context.Background(), "SUB_vsy1egv220")
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if sub.CustomerEmail != "member@example.com" {
		t.Fatalf("customer email not decoded from expanded object: %q", sub.CustomerEmail)
	}
	if sub.PlanCode != "PLN_gx2wn530m0i3w3m" {
		t.Fatalf("plan code not decoded from expanded object: %q", sub.PlanCode)
	}
	if _, ok := repo.subscriptions["SUB_vsy1egv220"]; !ok {
		t.Fatal("remote subscription was not mirrored locally")
	}
}

func TestToggleSubscriptionUnknownCode(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &stubGateway{}, nil)
	_, err := svc.EnableSubscription(context.Background(), "SUB_missing")
	if err == nil {
		t.Fatal("expected error for unknown subscription")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
