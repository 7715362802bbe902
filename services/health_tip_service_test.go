package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfuelAPI/internal/apperr"
)

var tipCols = []string{"id", "title", "description", "image_url", "read_time", "article_id"}

func TestHealthTipService_GetFeatured(t *testing.T) {
	mock := newMock(t)
	svc := NewHealthTipService(mock)

	mock.ExpectQuery("ORDER BY random").
		WillReturnRows(pgxmock.NewRows(tipCols).AddRow(int64(2), "Hidden Sugars", "Read labels", "https://img", "4 min", "hidden-sugars"))

	tip, err := svc.GetFeatured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hidden Sugars", tip.Title)
	assert.Equal(t, "hidden-sugars", tip.ArticleID)
}

func TestHealthTipService_GetFeatured_EmptyCatalog(t *testing.T) {
	mock := newMock(t)
	svc := NewHealthTipService(mock)

	mock.ExpectQuery("ORDER BY random").WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetFeatured(context.Background())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHealthTipService_ListTips(t *testing.T) {
	mock := newMock(t)
	svc := NewHealthTipService(mock)

	mock.ExpectQuery("FROM health_tips ORDER BY id").
		WillReturnRows(pgxmock.NewRows(tipCols).
			AddRow(int64(1), "a", "b", "", "", "").
			AddRow(int64(2), "c", "d", "", "", ""))

	tips, err := svc.ListTips(context.Background())
	require.NoError(t, err)
	assert.Len(t, tips, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
