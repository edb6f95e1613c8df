package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Fidel-C/smartpaystack/api/responses"
	"github.com/Fidel-C/smartpaystack/api/validators"
	billingsvc "github.com/Fidel-C/smartpaystack/internal/billing"
	"github.com/Fidel-C/smartpaystack/pkg/db/models"
	pkgerrors "github.com/Fidel-C/smartpaystack/pkg/errors"
	"github.com/Fidel-C/smartpaystack/pkg/logger"
	"github.com/Fidel-C/smartpaystack/pkg/paystack"
)

// SubscriptionService describes the subscription methods used by the HTTP controllers.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, params billingsvc.CreateSubscriptionParams) (*models.Subscription, error)
	GetSubscription(ctx context.Context, subscriptionCode string) (*models.Subscription, error)
	ListSubscriptions(ctx context.Context, customerEmail string) ([]models.Subscription, error)
	EnableSubscription(ctx context.Context, subscriptionCode string) (*paystack.StateChange, error)
	DisableSubscription(ctx context.Context, subscriptionCode string) (*paystack.StateChange, error)
}

type subscriptionResponse struct {
	ID               string `json:"id"`
	CustomerEmail    string `json:"customer_email"`
	PlanCode         string `json:"plan_code"`
	SubscriptionCode string `json:"subscription_code"`
	Status           string `json:"status"`
	NextPaymentAt    string `json:"next_payment_at,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type subscriptionListResponse struct {
	Subscriptions []subscriptionResponse `json:"subscriptions"`
}

type subscriptionCreateRequest struct {
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	PlanCode      string `json:"plan_code" validate:"required"`
}

type stateChangeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func SubscriptionCreate(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		var payload subscriptionCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.CreateSubscription(ctx, billingsvc.CreateSubscriptionParams{
			CustomerEmail: payload.CustomerEmail,
			PlanCode:      payload.PlanCode,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, subscriptionToResponse(sub))
	}
}

func SubscriptionsList(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		email := strings.TrimSpace(r.URL.Query().Get("customer_email"))
		subs, err := svc.ListSubscriptions(ctx, email)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		response := subscriptionListResponse{Subscriptions: make([]subscriptionResponse, 0, len(subs))}
		for i := range subs {
			response.Subscriptions = append(response.Subscriptions, subscriptionToResponse(&subs[i]))
		}
		responses.WriteSuccess(w, response)
	}
}

func SubscriptionGet(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "subscriptionCode"))
		if code == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "subscription code is required"))
			return
		}

		sub, err := svc.GetSubscription(ctx, code)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, subscriptionToResponse(sub))
	}
}

func SubscriptionEnable(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return subscriptionToggle(svc, logg, true)
}

func SubscriptionDisable(svc SubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return subscriptionToggle(svc, logg, false)
}

func subscriptionToggle(svc SubscriptionService, logg *logger.Logger, enable bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "subscriptionCode"))
		if code == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "subscription code is required"))
			return
		}

		var (
			change *paystack.StateChange
			err    error
		)
		if enable {
			change, err = svc.EnableSubscription(ctx, code)
		} else {
			change, err = svc.DisableSubscription(ctx, code)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, stateChangeResponse{
			Status:  change.Status,
			Message: change.Message,
		})
	}
}

func subscriptionToResponse(sub *models.Subscription) subscriptionResponse {
	resp := subscriptionResponse{
		ID:               sub.ID.String(),
		CustomerEmail:    sub.CustomerEmail,
		PlanCode:         sub.PlanCode,
		SubscriptionCode: sub.SubscriptionCode,
		Status:           sub.Status.String(),
		CreatedAt:        sub.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        sub.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if sub.NextPaymentAt != nil {
		resp.NextPaymentAt = sub.NextPaymentAt.UTC().Format(time.RFC3339)
	}
	return resp
}
