package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mindfuelAPI/internal/subscription"
)

// paymentTimeout leaves room for a Stripe or Paddle round trip.
const paymentTimeout = 30 * time.Second

type StripeBilling interface {
	EnsureCustomer(ctx context.Context, clerkID string, req *subscription.CreateCustomerRequest) (string, error)
	CreateSubscription(ctx context.Context, clerkID string, plan subscription.Plan) (*subscription.SubscribeResponse, error)
	CancelSubscription(ctx context.Context, clerkID string) (*subscription.Subscription, error)
	GetSubscription(ctx context.Context, clerkID string) (*subscription.Subscription, error)
	CreatePaymentIntent(ctx context.Context, clerkID string, amount float64) (*subscription.PaymentIntentResponse, error)
	CreateCheckoutSession(ctx context.Context, clerkID string, plan subscription.Plan) (*subscription.CheckoutResponse, error)
}

type PaddleCheckout interface {
	ListPrices(ctx context.Context) ([]subscription.Price, error)
	CreateTransaction(ctx context.Context, clerkID, priceID string) (*subscription.TransactionResponse, error)
}

type BillingHandler struct {
	stripe StripeBilling
	paddle PaddleCheckout
}

// NewBillingHandler wires either provider; a nil one answers 503.
func NewBillingHandler(stripe StripeBilling, paddle PaddleCheckout) *BillingHandler {
	return &BillingHandler{stripe: stripe, paddle: paddle}
}

// paymentAuth is authenticated with the longer payment deadline.
func paymentAuth(w http.ResponseWriter, r *http.Request) (context.Context, context.CancelFunc, string, bool) {
	_, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return nil, nil, "", false
	}
	cancel()
	ctx, cancel := context.WithTimeout(r.Context(), paymentTimeout)
	return ctx, cancel, clerkID, true
}

func (h *BillingHandler) stripeReady(w http.ResponseWriter) bool {
	if h.stripe == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Stripe billing is not configured")
		return false
	}
	return true
}

func (h *BillingHandler) paddleReady(w http.ResponseWriter) bool {
	if h.paddle == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Paddle billing is not configured")
		return false
	}
	return true
}

func (h *BillingHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.stripeReady(w) {
		return
	}
	ctx, cancel, clerkID, ok := paymentAuth(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req subscription.CreateCustomerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	customerID, err := h.stripe.EnsureCustomer(ctx, clerkID, &req)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"customerId": customerID})
}

func (h *BillingHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	if !h.stripeReady(w) {
		return
	}
	ctx, cancel, clerkID, ok := paymentAuth(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req subscription.SubscribeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	resp, err := h.stripe.CreateSubscription(ctx, clerkID, req.Plan)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	if !h.stripeReady(w) {
		return
	}
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	sub, err := h.stripe.GetSubscription(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

func (h *BillingHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	if !h.stripeReady(w) {
		return
	}
	ctx, cancel, clerkID, ok := paymentAuth(w, r)
	if !ok {
		return
	}
	defer cancel()

	sub, err := h.stripe.CancelSubscription(ctx, clerkID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

func (h *BillingHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	if !h.stripeReady(w) {
		return
	}
	ctx, cancel, clerkID, ok := paymentAuth(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req subscription.PaymentIntentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	resp, err := h.stripe.CreatePaymentIntent(ctx, clerkID, req.Amount)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if !h.stripeReady(w) {
		return
	}
	ctx, cancel, clerkID, ok := paymentAuth(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req subscription.CheckoutRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	resp, err := h.stripe.CreateCheckoutSession(ctx, clerkID, req.Plan)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *BillingHandler) GetPaddlePrices(w http.ResponseWriter, r *http.Request) {
	if !h.paddleReady(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), paymentTimeout)
	defer cancel()

	prices, err := h.paddle.ListPrices(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prices)
}

func (h *BillingHandler) CreatePaddleTransaction(w http.ResponseWriter, r *http.Request) {
	if !h.paddleReady(w) {
		return
	}
	ctx, cancel, clerkID, ok := paymentAuth(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req subscription.CreateTransactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	resp, err := h.paddle.CreateTransaction(ctx, clerkID, req.PriceID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

const paymentSuccessHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Payment Successful</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body { background-color: #0F172A; color: white; font-family: sans-serif; text-align: center; padding: 50px 20px; }
		h1 { color: #22C55E; }
		p { color: #94A3B8; }
		.card { background: #1E293B; padding: 30px; border-radius: 15px; max-width: 400px; margin: 0 auto; }
	</style>
</head>
<body>
	<div class="card">
		<h1>Payment Successful!</h1>
		<p>Thank you for subscribing to MindFuel Premium.</p>
		<p>You can now close this window and return to the app.</p>
	</div>
</body>
</html>
`

func (h *BillingHandler) PaymentSuccessPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, paymentSuccessHTML)
}
