package services

import (
	"context"
	"errors"
	"testing"

	paddle "github.com/PaddleHQ/paddle-go-sdk"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfuelAPI/internal/apperr"
)

type fakePaddle struct {
	txReq *paddle.CreateTransactionRequest
	err   error
}

func (f *fakePaddle) ListPrices(context.Context, *paddle.ListPricesRequest) (*paddle.Collection[*paddle.Price], error) {
	return nil, f.err
}

func (f *fakePaddle) CreateTransaction(_ context.Context, req *paddle.CreateTransactionRequest) (*paddle.Transaction, error) {
	f.txReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &paddle.Transaction{ID: "txn_01"}, nil
}

func TestPaddleService_CreateTransaction(t *testing.T) {
	for _, sandbox := range []bool{true, false} {
		fake := &fakePaddle{}
		svc := NewPaddleService(fake, nil, sandbox)

		resp, err := svc.CreateTransaction(context.Background(), testClerkID, "pri_01")
		require.NoError(t, err)
		assert.Equal(t, "txn_01", resp.TransactionID)
		assert.Equal(t, testClerkID, fake.txReq.CustomData["userId"])
		require.Len(t, fake.txReq.Items, 1)

		if sandbox {
			assert.Equal(t, "https://sandbox-checkout.paddle.com/checkout/custom?_ptxn=txn_01", resp.CheckoutURL)
		} else {
			assert.Equal(t, "https://checkout.paddle.com/checkout/custom?_ptxn=txn_01", resp.CheckoutURL)
		}
	}
}

func TestPaddleService_UpstreamErrors(t *testing.T) {
	svc := NewPaddleService(&fakePaddle{err: errors.New("paddle down")}, nil, true)

	_, err := svc.CreateTransaction(context.Background(), testClerkID, "pri_01")
	assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)

	_, err = svc.ListPrices(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
}

func TestPriceFromPaddle(t *testing.T) {
	p := &paddle.Price{
		ID:          "pri_01",
		ProductID:   "pro_01",
		Description: "Monthly",
		UnitPrice:   paddle.Money{Amount: "999", CurrencyCode: paddle.CurrencyCodeUSD},
		BillingCycle: &paddle.Duration{
			Interval:  paddle.IntervalMonth,
			Frequency: 1,
		},
	}

	got := priceFromPaddle(p)
	assert.Equal(t, "pri_01", got.ID)
	assert.Equal(t, "999", got.Amount)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "month", got.Interval)
}

func TestPaddleService_UnlockPremium(t *testing.T) {
	mock := newMock(t)
	svc := NewPaddleService(&fakePaddle{}, mock, true)

	mock.ExpectExec("UPDATE users SET subscription_status").WithArgs(testClerkID, "active").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, svc.UnlockPremium(context.Background(), testClerkID))

	mock.ExpectExec("UPDATE users SET subscription_status").WithArgs("user_gone", "active").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, svc.UnlockPremium(context.Background(), "user_gone"), apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
