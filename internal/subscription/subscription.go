package subscription

import (
	"time"

	"mindfuelAPI/internal/config"
)

type Plan string

const (
	PlanProMonthly     Plan = "pro-monthly"
	PlanProAnnual      Plan = "pro-annual"
	PlanPremiumMonthly Plan = "premium-monthly"
	PlanPremiumAnnual  Plan = "premium-annual"
)

// Status values stored on users.subscription_status. Stripe statuses are
// stored verbatim; StatusNone marks users that never subscribed.
const (
	StatusNone     = "none"
	StatusActive   = "active"
	StatusCanceled = "canceled"
)

type Subscription struct {
	UserID               string    `json:"userId"`
	StripeCustomerID     string    `json:"stripeCustomerId"`
	StripeSubscriptionID string    `json:"stripeSubscriptionId"`
	StripePriceID        string    `json:"stripePriceId"`
	Status               string    `json:"status"`
	CurrentPeriodEnd     time.Time `json:"currentPeriodEnd"`
}

type CreateCustomerRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

type SubscribeRequest struct {
	Plan Plan `json:"plan" validate:"required,plan"`
}

type SubscribeResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientSecret   string `json:"clientSecret,omitempty"`
	Status         string `json:"status"`
}

type CheckoutRequest struct {
	Plan Plan `json:"plan" validate:"required,plan"`
}

type CheckoutResponse struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

type PaymentIntentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	AmountCents  int64  `json:"amountCents"`
}

// PriceID resolves a plan into its configured Stripe price id. The second
// result is false for unknown or unconfigured plans.
func PriceID(prices config.StripePrices, p Plan) (string, bool) {
	var id string
	switch p {
	case PlanProMonthly:
		id = prices.ProMonthly
	case PlanProAnnual:
		id = prices.ProAnnual
	case PlanPremiumMonthly:
		id = prices.PremiumMonthly
	case PlanPremiumAnnual:
		id = prices.PremiumAnnual
	}
	return id, id != ""
}

// ToCents converts a dollar amount into Stripe's smallest currency unit.
func ToCents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

// Price is an active Paddle catalog price.
type Price struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Interval    string `json:"interval"`
}

type CreateTransactionRequest struct {
	PriceID string `json:"priceId" validate:"required"`
}

type TransactionResponse struct {
	TransactionID string `json:"transactionId"`
	CheckoutURL   string `json:"checkoutUrl"`
}
