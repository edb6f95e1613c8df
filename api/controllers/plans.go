package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Fidel-C/smartpaystack/api/responses"
	"github.com/Fidel-C/smartpaystack/api/validators"
	billingsvc "github.com/Fidel-C/smartpaystack/internal/billing"
	"github.com/Fidel-C/smartpaystack/pkg/db/models"
	"github.com/Fidel-C/smartpaystack/pkg/enums"
	pkgerrors "github.com/Fidel-C/smartpaystack/pkg/errors"
	"github.com/Fidel-C/smartpaystack/pkg/logger"
)

// PlanService describes the plan methods used by the HTTP controllers.
type PlanService interface {
	CreatePlan(ctx context.Context, params billingsvc.CreatePlanParams) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, planCode string) (*models.Plan, error)
}

type planResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlanCode    string `json:"plan_code"`
	Interval    string `json:"interval"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type planListResponse struct {
	Plans []planResponse `json:"plans"`
}

type planCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	Interval    string `json:"interval" validate:"required"`
	Currency    string `json:"currency,omitempty"`
	Description string `json:"description,omitempty"`
}

func PlanCreate(svc PlanService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		var payload planCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(payload.Amount))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		interval, err := enums.ParseInterval(payload.Interval)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid interval"))
			return
		}

		var currency enums.Currency
		if trimmed := strings.TrimSpace(payload.Currency); trimmed != "" {
			currency, err = enums.ParseCurrency(trimmed)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
				return
			}
		}

		plan, err := svc.CreatePlan(ctx, billingsvc.CreatePlanParams{
			Name:        payload.Name,
			Amount:      amount,
			Interval:    interval,
			Currency:    currency,
			Description: payload.Description,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, planToResponse(plan))
	}
}

func PlansList(svc PlanService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		plans, err := svc.ListPlans(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		response := planListResponse{Plans: make([]planResponse, 0, len(plans))}
		for i := range plans {
			response.Plans = append(response.Plans, planToResponse(&plans[i]))
		}
		responses.WriteSuccess(w, response)
	}
}

func PlanGet(svc PlanService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		planCode := strings.TrimSpace(chi.URLParam(r, "planCode"))
		if planCode == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "plan code is required"))
			return
		}

		plan, err := svc.GetPlan(ctx, planCode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, planToResponse(plan))
	}
}

func planToResponse(plan *models.Plan) planResponse {
	resp := planResponse{
		ID:        plan.ID.String(),
		Name:      plan.Name,
		PlanCode:  plan.PlanCode,
		Interval:  plan.Interval.String(),
		Amount:    plan.Amount.String(),
		Currency:  plan.Currency.String(),
		CreatedAt: plan.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: plan.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if plan.Description != nil {
		resp.Description = *plan.Description
	}
	return resp
}
