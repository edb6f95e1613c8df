package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	billingsvc "github.com/Fidel-C/smartpaystack/internal/billing"
	"github.com/Fidel-C/smartpaystack/pkg/config"
	"github.com/Fidel-C/smartpaystack/pkg/db/models"
	"github.com/Fidel-C/smartpaystack/pkg/enums"
	pkgerrors "github.com/Fidel-C/smartpaystack/pkg/errors"
	"github.com/Fidel-C/smartpaystack/pkg/paystack"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubPlanService struct{}

func (stubPlanService) CreatePlan(ctx context.Context, params billingsvc.CreatePlanParams) (*models.Plan, error) {
	return &models.Plan{ID: uuid.New(), Name: params.Name, PlanCode: "PLN_x", Interval: params.Interval, Amount: params.Amount}, nil
}

func (stubPlanService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	return nil, nil
}

func (stubPlanService) GetPlan(ctx context.Context, planCode string) (*models.Plan, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
}

type stubSubscriptionService struct{}

func (stubSubscriptionService) CreateSubscription(ctx context.Context, params billingsvc.CreateSubscriptionParams) (*models.Subscription, error) {
	return &models.Subscription{ID: uuid.New(), SubscriptionCode: "SUB_x", Status: enums.SubscriptionStatusActive}, nil
}

func (stubSubscriptionService) GetSubscription(ctx context.Context, code string) (*models.Subscription, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}

func (stubSubscriptionService) ListSubscriptions(ctx context.Context, customerEmail string) ([]models.Subscription, error) {
	return nil, nil
}

func (stubSubscriptionService) EnableSubscription(ctx context.Context, code string) (*paystack.StateChange, error) {
	return &paystack.StateChange{Status: true, Message: "Subscription enabled successfully"}, nil
}

func (stubSubscriptionService) DisableSubscription(ctx context.Context, code string) (*paystack.StateChange, error) {
	return &paystack.StateChange{Status: true, Message: "Subscription disabled successfully"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		Billing: config.BillingConfig{
			PlanCacheTTL:    time.Minute,
			RateLimitWindow: time.Minute,
			RateLimitMax:    60,
		},
	}
}

func newTestRouter() http.Handler {
	return NewRouter(testConfig(), nil, stubPinger{}, nil, Services{
		Plans:         stubPlanService{},
		Subscriptions: stubSubscriptionService{},
	})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, resp.Code)
		}
		if got := resp.Header().Get("X-Smartpaystack-Env"); got != "dev" {
			t.Fatalf("expected env header for %s, got %q", path, got)
		}
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics, got %d", resp.Code)
	}
}

func TestRouterMountsBillingRoutes(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/plans", http.StatusOK},
		{http.MethodGet, "/api/v1/plans/PLN_missing", http.StatusNotFound},
		{http.MethodGet, "/api/v1/subscriptions", http.StatusOK},
		{http.MethodGet, "/api/v1/subscriptions/SUB_missing", http.StatusNotFound},
		{http.MethodPost, "/api/v1/subscriptions/SUB_x/enable", http.StatusOK},
		{http.MethodPost, "/api/v1/subscriptions/SUB_x/disable", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.want, resp.Code, resp.Body.String())
		}
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}
