package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fidel-C/smartpaystack/pkg/enums"
)

// Plan captures the local record for a Paystack billing plan. Amount is
// stored in the major currency unit; the gateway holds the minor-unit
// figure.
type Plan struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	PlanCode    string          `gorm:"column:plan_code;not null;uniqueIndex"`
	Interval    enums.Interval  `gorm:"column:interval;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency    enums.Currency  `gorm:"column:currency;not null;default:'NGN'"`
	Description *string         `gorm:"column:description"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
