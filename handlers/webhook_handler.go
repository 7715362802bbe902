package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk"
	"github.com/goccy/go-json"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/logger"
	"mindfuelAPI/internal/subscription"
	"mindfuelAPI/internal/user"
	"mindfuelAPI/services"
)

const (
	webhookMaxBody  = int64(65536)
	svixTolerance   = 5 * time.Minute
	webhookDeadline = 15 * time.Second
)

type UserProvisioner interface {
	CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error)
	UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
}

type SubscriptionSync interface {
	FetchSubscription(ctx context.Context, id string) (*subscription.Subscription, error)
	UpsertSubscription(ctx context.Context, clerkID string, sub *subscription.Subscription) error
	UpdateSubscriptionStatus(ctx context.Context, sub *subscription.Subscription) error
}

type PremiumUnlocker interface {
	UnlockPremium(ctx context.Context, clerkID string) error
}

type WebhookSecrets struct {
	Clerk  string
	Stripe string
	Paddle string
}

type WebhookHandler struct {
	users   UserProvisioner
	billing SubscriptionSync
	premium PremiumUnlocker
	secrets WebhookSecrets
	now     func() time.Time
}

func NewWebhookHandler(users UserProvisioner, billing SubscriptionSync, premium PremiumUnlocker, secrets WebhookSecrets) *WebhookHandler {
	return &WebhookHandler{
		users:   users,
		billing: billing,
		premium: premium,
		secrets: secrets,
		now:     time.Now,
	}
}

func readWebhookBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookMaxBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return nil, false
	}
	return body, true
}

// HandleClerkWebhook keeps the users table in sync with Clerk.
func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	body, ok := readWebhookBody(w, r)
	if !ok {
		return
	}

	if h.secrets.Clerk == "" {
		log.Warn("CLERK_WEBHOOK_SECRET not set, skipping signature verification")
	} else if err := verifySvix(h.secrets.Clerk, r.Header, body, h.now()); err != nil {
		log.Warn("invalid clerk webhook signature", slog.String("error", err.Error()))
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event user.ClerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), webhookDeadline)
	defer cancel()

	log = log.With(slog.String("event_type", event.Type))

	var data user.ClerkUserData
	if err := json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
		log.Warn("clerk webhook without user id")
		respondWithError(w, http.StatusBadRequest, "Missing user data")
		return
	}

	var err error
	switch event.Type {
	case "user.created":
		_, err = h.users.CreateUser(ctx, data.CreateRequest())
	case "user.updated":
		_, err = h.users.UpdateProfileByClerkID(ctx, data.ID, data.UpdateRequest())
		if errors.Is(err, apperr.ErrNotFound) {
			_, err = h.users.CreateUser(ctx, data.CreateRequest())
		}
	case "user.deleted":
		err = h.users.DeleteUserByClerkID(ctx, data.ID)
		if errors.Is(err, apperr.ErrNotFound) {
			err = nil
		}
	default:
		log.Info("unhandled clerk webhook event")
	}
	if err != nil {
		log.Error("failed to process clerk webhook", slog.String("clerk_id", data.ID), slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
		return
	}

	log.Info("processed clerk webhook", slog.String("clerk_id", data.ID))
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// verifySvix checks a Svix-signed delivery. The secret is the "whsec_"
// value from the Clerk dashboard; the signature header may carry several
// space separated "v1,<base64>" entries.
func verifySvix(secret string, header http.Header, body []byte, now time.Time) error {
	id := header.Get("svix-id")
	ts := header.Get("svix-timestamp")
	sigs := header.Get("svix-signature")
	if id == "" || ts == "" || sigs == "" {
		return errors.New("missing svix headers")
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("bad svix-timestamp: %w", err)
	}
	sent := time.Unix(sec, 0)
	if now.Sub(sent) > svixTolerance || sent.Sub(now) > svixTolerance {
		return errors.New("svix timestamp outside tolerance")
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return fmt.Errorf("bad webhook secret: %w", err)
	}

	expected := signSvix(key, id, ts, body)
	for _, entry := range strings.Fields(sigs) {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return errors.New("no matching signature")
}

func signSvix(key []byte, id, ts string, body []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + ts + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// HandleStripeWebhook applies subscription lifecycle events to users.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if h.secrets.Stripe == "" || h.billing == nil {
		log.Error("stripe webhook received but STRIPE_WEBHOOK_SECRET is not set")
		respondWithError(w, http.StatusServiceUnavailable, "Stripe webhooks are not configured")
		return
	}

	payload, ok := readWebhookBody(w, r)
	if !ok {
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.secrets.Stripe,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warn("invalid stripe webhook signature", slog.String("error", err.Error()))
		respondWithError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), webhookDeadline)
	defer cancel()

	log = log.With(slog.String("event_type", string(event.Type)), slog.String("event_id", event.ID))

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			respondWithError(w, http.StatusBadRequest, "Error parsing webhook JSON")
			return
		}
		err = h.checkoutCompleted(ctx, &session)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			respondWithError(w, http.StatusBadRequest, "Error parsing webhook JSON")
			return
		}
		err = h.billing.UpdateSubscriptionStatus(ctx, services.ToSubscription(&sub))

	case "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			respondWithError(w, http.StatusBadRequest, "Error parsing webhook JSON")
			return
		}
		if invoice.Subscription != nil {
			err = h.refreshSubscription(ctx, invoice.Subscription.ID)
		}

	default:
		log.Info("unhandled stripe webhook event")
	}

	if err != nil {
		log.Error("failed to process stripe webhook", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) checkoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	clerkID := session.ClientReferenceID
	if clerkID == "" {
		clerkID = session.Metadata[services.MetadataClerkID]
	}
	if clerkID == "" {
		return errors.New("checkout session carries no clerk id")
	}
	if session.Subscription == nil {
		return nil
	}

	sub, err := h.billing.FetchSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return err
	}
	return h.billing.UpsertSubscription(ctx, clerkID, sub)
}

func (h *WebhookHandler) refreshSubscription(ctx context.Context, subscriptionID string) error {
	sub, err := h.billing.FetchSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	return h.billing.UpdateSubscriptionStatus(ctx, sub)
}

type paddleEvent struct {
	EventID   string               `json:"event_id"`
	EventType paddle.EventTypeName `json:"event_type"`
	Data      struct {
		ID         string         `json:"id"`
		CustomData map[string]any `json:"custom_data"`
	} `json:"data"`
}

// HandlePaddleWebhook unlocks premium once Paddle reports a paid transaction.
func (h *WebhookHandler) HandlePaddleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if h.secrets.Paddle == "" || h.premium == nil {
		log.Error("paddle webhook received but PADDLE_SECRET_KEY is not set")
		respondWithError(w, http.StatusServiceUnavailable, "Paddle webhooks are not configured")
		return
	}

	body, ok := readWebhookBody(w, r)
	if !ok {
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	valid, err := paddle.NewWebhookVerifier(h.secrets.Paddle).Verify(r)
	if err != nil || !valid {
		log.Warn("invalid paddle webhook signature")
		respondWithError(w, http.StatusForbidden, "Invalid signature")
		return
	}

	var event paddleEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Unable to parse JSON")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), webhookDeadline)
	defer cancel()

	log = log.With(slog.String("event_type", string(event.EventType)), slog.String("event_id", event.EventID))

	switch event.EventType {
	case paddle.EventTypeNameTransactionPaid, paddle.EventTypeNameSubscriptionCreated:
		clerkID, _ := event.Data.CustomData["userId"].(string)
		if clerkID == "" {
			log.Warn("paddle transaction without userId", slog.String("transaction_id", event.Data.ID))
			break
		}
		if err := h.premium.UnlockPremium(ctx, clerkID); err != nil {
			log.Error("failed to unlock premium", slog.String("clerk_id", clerkID), slog.String("error", err.Error()))
			writeServiceError(ctx, w, err)
			return
		}
		log.Info("premium unlocked", slog.String("clerk_id", clerkID))
	default:
		log.Info("unhandled paddle webhook event")
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"id": event.Data.ID})
}
