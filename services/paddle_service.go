package services

import (
	"context"
	"fmt"
	"log/slog"

	paddle "github.com/PaddleHQ/paddle-go-sdk"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/store"
	"mindfuelAPI/internal/subscription"
)

const paddleReturnURL = "mindfuel://payment-success"

// PaddleAPI is the part of *paddle.SDK the service calls.
type PaddleAPI interface {
	ListPrices(ctx context.Context, req *paddle.ListPricesRequest) (*paddle.Collection[*paddle.Price], error)
	CreateTransaction(ctx context.Context, req *paddle.CreateTransactionRequest) (*paddle.Transaction, error)
}

type PaddleService struct {
	client  PaddleAPI
	db      store.DB
	sandbox bool
}

func NewPaddleService(client PaddleAPI, db store.DB, sandbox bool) *PaddleService {
	return &PaddleService{client: client, db: db, sandbox: sandbox}
}

// NewPaddleClient picks the sandbox or live API from the config flag.
func NewPaddleClient(apiKey string, sandbox bool) (*paddle.SDK, error) {
	baseURL := paddle.ProductionBaseURL
	if sandbox {
		baseURL = paddle.SandboxBaseURL
	}
	return paddle.New(apiKey, paddle.WithBaseURL(baseURL))
}

func (s *PaddleService) ListPrices(ctx context.Context) ([]subscription.Price, error) {
	coll, err := s.client.ListPrices(ctx, &paddle.ListPricesRequest{
		Status: []string{string(paddle.StatusActive)},
	})
	if err != nil {
		return nil, apperr.Upstream("paddle list prices: %v", err)
	}

	prices := []subscription.Price{}
	for {
		result := coll.Next(ctx)
		if !result.Ok() {
			if err := result.Err(); err != nil {
				return nil, apperr.Upstream("paddle list prices: %v", err)
			}
			break
		}
		prices = append(prices, priceFromPaddle(result.Value()))
	}
	return prices, nil
}

func priceFromPaddle(p *paddle.Price) subscription.Price {
	interval := ""
	if p.BillingCycle != nil {
		interval = string(p.BillingCycle.Interval)
	}
	return subscription.Price{
		ID:          p.ID,
		ProductID:   p.ProductID,
		Description: p.Description,
		Amount:      p.UnitPrice.Amount,
		Currency:    string(p.UnitPrice.CurrencyCode),
		Interval:    interval,
	}
}

// CreateTransaction opens an automatically collected transaction for one
// catalog price and returns the hosted checkout URL for it.
func (s *PaddleService) CreateTransaction(ctx context.Context, clerkID, priceID string) (*subscription.TransactionResponse, error) {
	returnURL := paddleReturnURL
	req := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{
			*paddle.NewCreateTransactionItemsCatalogItem(&paddle.CatalogItem{
				Quantity: 1,
				PriceID:  priceID,
			}),
		},
		CustomData:     paddle.CustomData{"userId": clerkID},
		CollectionMode: paddle.PtrTo(paddle.CollectionModeAutomatic),
		Checkout:       &paddle.TransactionCheckout{URL: &returnURL},
	}

	tx, err := s.client.CreateTransaction(ctx, req)
	if err != nil {
		return nil, apperr.Upstream("paddle create transaction: %v", err)
	}
	slog.InfoContext(ctx, "paddle transaction created", "transaction_id", tx.ID, "status", tx.Status)

	return &subscription.TransactionResponse{
		TransactionID: tx.ID,
		CheckoutURL:   s.checkoutURL(tx.ID),
	}, nil
}

func (s *PaddleService) checkoutURL(transactionID string) string {
	host := "checkout"
	if s.sandbox {
		host = "sandbox-checkout"
	}
	return fmt.Sprintf("https://%s.paddle.com/checkout/custom?_ptxn=%s", host, transactionID)
}

// UnlockPremium marks the user as an active subscriber after a paid
// Paddle transaction.
func (s *PaddleService) UnlockPremium(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET subscription_status = $2, updated_at = NOW() WHERE clerk_id = $1`,
		clerkID, subscription.StatusActive,
	)
	if err != nil {
		return fmt.Errorf("failed to unlock premium: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user %s", clerkID)
	}
	return nil
}
