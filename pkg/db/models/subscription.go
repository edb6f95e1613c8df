package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Fidel-C/smartpaystack/pkg/enums"
)

// Subscription persists Paystack subscription state per customer. The
// email token is required to enable or disable the subscription later.
type Subscription struct {
	ID               uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerEmail    string                   `gorm:"column:customer_email;not null;index"`
	PlanCode         string                   `gorm:"column:plan_code;not null;index"`
	SubscriptionCode string                   `gorm:"column:subscription_code;not null;uniqueIndex"`
	EmailToken       string                   `gorm:"column:email_token;not null"`
	Status           enums.SubscriptionStatus `gorm:"column:status;not null;default:'active'"`
	NextPaymentAt    *time.Time               `gorm:"column:next_payment_at"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
