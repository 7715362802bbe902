package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v76"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/config"
	"mindfuelAPI/internal/store"
	"mindfuelAPI/internal/subscription"
)

// MetadataClerkID is the Stripe metadata key carrying the Clerk user id.
const MetadataClerkID = "clerk_id"

type BillingService struct {
	db         store.DB
	stripe     StripeGateway
	prices     config.StripePrices
	successURL string
	cancelURL  string
}

func NewBillingService(db store.DB, gw StripeGateway, cfg *config.Config) *BillingService {
	return &BillingService{
		db:         db,
		stripe:     gw,
		prices:     cfg.StripePrices,
		successURL: cfg.StripeSuccessURL,
		cancelURL:  cfg.StripeCancelURL,
	}
}

type billingAccount struct {
	email          string
	name           string
	customerID     *string
	subscriptionID *string
}

func (s *BillingService) account(ctx context.Context, clerkID string) (*billingAccount, error) {
	var a billingAccount
	err := s.db.QueryRow(ctx,
		`SELECT email, name, stripe_customer_id, stripe_subscription_id FROM users WHERE clerk_id = $1`,
		clerkID,
	).Scan(&a.email, &a.name, &a.customerID, &a.subscriptionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user %s", clerkID)
		}
		return nil, fmt.Errorf("failed to load billing account: %w", err)
	}
	return &a, nil
}

// EnsureCustomer returns the user's Stripe customer id, creating the
// customer on first use.
func (s *BillingService) EnsureCustomer(ctx context.Context, clerkID string, req *subscription.CreateCustomerRequest) (string, error) {
	a, err := s.account(ctx, clerkID)
	if err != nil {
		return "", err
	}
	if a.customerID != nil && *a.customerID != "" {
		return *a.customerID, nil
	}

	email, name := a.email, a.name
	if req != nil {
		if req.Email != "" {
			email = req.Email
		}
		if req.Name != "" {
			name = req.Name
		}
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.AddMetadata(MetadataClerkID, clerkID)

	cust, err := s.stripe.CreateCustomer(ctx, params)
	if err != nil {
		return "", apperr.Upstream("stripe create customer: %v", err)
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE clerk_id = $1`,
		clerkID, cust.ID,
	); err != nil {
		return "", fmt.Errorf("failed to save stripe customer: %w", err)
	}
	return cust.ID, nil
}

// CreateSubscription starts an incomplete subscription whose first invoice
// the client confirms with the returned payment intent secret.
func (s *BillingService) CreateSubscription(ctx context.Context, clerkID string, plan subscription.Plan) (*subscription.SubscribeResponse, error) {
	priceID, ok := subscription.PriceID(s.prices, plan)
	if !ok {
		return nil, apperr.InvalidArgument("unknown plan %q", plan)
	}

	customerID, err := s.EnsureCustomer(ctx, clerkID, nil)
	if err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.AddMetadata(MetadataClerkID, clerkID)
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := s.stripe.CreateSubscription(ctx, params)
	if err != nil {
		return nil, apperr.Upstream("stripe create subscription: %v", err)
	}

	if err := s.saveSubscription(ctx, clerkID, sub); err != nil {
		return nil, err
	}

	resp := &subscription.SubscribeResponse{SubscriptionID: sub.ID, Status: string(sub.Status)}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		resp.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return resp, nil
}

func (s *BillingService) CancelSubscription(ctx context.Context, clerkID string) (*subscription.Subscription, error) {
	a, err := s.account(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if a.subscriptionID == nil || *a.subscriptionID == "" {
		return nil, apperr.NotFound("no subscription for user %s", clerkID)
	}

	sub, err := s.stripe.CancelSubscription(ctx, *a.subscriptionID)
	if err != nil {
		return nil, apperr.Upstream("stripe cancel subscription: %v", err)
	}

	dbSub := ToSubscription(sub)
	if err := s.UpdateSubscriptionStatus(ctx, dbSub); err != nil {
		return nil, err
	}
	return dbSub, nil
}

// GetSubscription reports the subscription state stored for the user.
func (s *BillingService) GetSubscription(ctx context.Context, clerkID string) (*subscription.Subscription, error) {
	var (
		sub        subscription.Subscription
		customerID *string
		subID      *string
		expires    *time.Time
	)
	err := s.db.QueryRow(ctx, `
	SELECT id, stripe_customer_id, stripe_subscription_id, subscription_status, subscription_expires_at
	FROM users WHERE clerk_id = $1`, clerkID).
		Scan(&sub.UserID, &customerID, &subID, &sub.Status, &expires)
	if err != nil {
		return nil, apperr.FromPg("failed to get subscription", err)
	}
	if customerID != nil {
		sub.StripeCustomerID = *customerID
	}
	if subID != nil {
		sub.StripeSubscriptionID = *subID
	}
	if expires != nil {
		sub.CurrentPeriodEnd = *expires
	}
	return &sub, nil
}

func (s *BillingService) CreatePaymentIntent(ctx context.Context, clerkID string, amount float64) (*subscription.PaymentIntentResponse, error) {
	cents := subscription.ToCents(amount)
	if cents <= 0 {
		return nil, apperr.InvalidArgument("amount must be positive")
	}
	customerID, err := s.EnsureCustomer(ctx, clerkID, nil)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Customer: stripe.String(customerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata(MetadataClerkID, clerkID)

	pi, err := s.stripe.CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, apperr.Upstream("stripe create payment intent: %v", err)
	}
	return &subscription.PaymentIntentResponse{ClientSecret: pi.ClientSecret, AmountCents: cents}, nil
}

func (s *BillingService) CreateCheckoutSession(ctx context.Context, clerkID string, plan subscription.Plan) (*subscription.CheckoutResponse, error) {
	priceID, ok := subscription.PriceID(s.prices, plan)
	if !ok {
		return nil, apperr.InvalidArgument("unknown plan %q", plan)
	}
	customerID, err := s.EnsureCustomer(ctx, clerkID, nil)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(clerkID),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
	}
	params.AddMetadata(MetadataClerkID, clerkID)

	sess, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, apperr.Upstream("stripe create checkout session: %v", err)
	}
	return &subscription.CheckoutResponse{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

// FetchSubscription loads the latest subscription state from Stripe.
func (s *BillingService) FetchSubscription(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.stripe.GetSubscription(ctx, id)
	if err != nil {
		return nil, apperr.Upstream("stripe get subscription: %v", err)
	}
	return ToSubscription(sub), nil
}

// ToSubscription flattens the fields stored on users.
func ToSubscription(sub *stripe.Subscription) *subscription.Subscription {
	out := &subscription.Subscription{
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}
	if sub.Customer != nil {
		out.StripeCustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.StripePriceID = sub.Items.Data[0].Price.ID
	}
	return out
}

func (s *BillingService) saveSubscription(ctx context.Context, clerkID string, sub *stripe.Subscription) error {
	return s.UpsertSubscription(ctx, clerkID, ToSubscription(sub))
}

// UpsertSubscription attaches sub to the user identified by clerkID.
func (s *BillingService) UpsertSubscription(ctx context.Context, clerkID string, sub *subscription.Subscription) error {
	query := `
	UPDATE users SET
		stripe_customer_id = COALESCE(NULLIF($2, ''), stripe_customer_id),
		stripe_subscription_id = $3,
		subscription_status = $4,
		subscription_expires_at = $5,
		updated_at = NOW()
	WHERE clerk_id = $1`

	tag, err := s.db.Exec(ctx, query, clerkID, sub.StripeCustomerID, sub.StripeSubscriptionID, sub.Status, sub.CurrentPeriodEnd)
	if err != nil {
		return apperr.FromPg("failed to save subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user %s", clerkID)
	}
	return nil
}

// UpdateSubscriptionStatus applies a Stripe status change to whichever user
// holds the subscription. Unknown subscriptions are ignored.
func (s *BillingService) UpdateSubscriptionStatus(ctx context.Context, sub *subscription.Subscription) error {
	query := `
	UPDATE users SET
		subscription_status = $2,
		subscription_expires_at = $3,
		updated_at = NOW()
	WHERE stripe_subscription_id = $1`

	tag, err := s.db.Exec(ctx, query, sub.StripeSubscriptionID, sub.Status, sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		slog.WarnContext(ctx, "subscription update for unknown subscription", "subscription_id", sub.StripeSubscriptionID)
	}
	return nil
}
