package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/healthtip"
	"mindfuelAPI/internal/store"
)

type HealthTipService struct {
	db store.DB
}

func NewHealthTipService(db store.DB) *HealthTipService {
	return &HealthTipService{db: db}
}

// GetFeatured picks a random tip from the catalog.
func (s *HealthTipService) GetFeatured(ctx context.Context) (*healthtip.HealthTip, error) {
	var t healthtip.HealthTip
	err := s.db.QueryRow(ctx,
		`SELECT id, title, description, image_url, read_time, article_id FROM health_tips ORDER BY random() LIMIT 1`,
	).Scan(&t.ID, &t.Title, &t.Description, &t.ImageURL, &t.ReadTime, &t.ArticleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("no health tips")
		}
		return nil, fmt.Errorf("failed to get featured tip: %w", err)
	}
	return &t, nil
}

func (s *HealthTipService) ListTips(ctx context.Context) ([]*healthtip.HealthTip, error) {
	rows, err := s.db.Query(ctx, `SELECT id, title, description, image_url, read_time, article_id FROM health_tips ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query health tips: %w", err)
	}
	defer rows.Close()

	out := []*healthtip.HealthTip{}
	for rows.Next() {
		var t healthtip.HealthTip
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.ImageURL, &t.ReadTime, &t.ArticleID); err != nil {
			return nil, fmt.Errorf("failed to scan health tip: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
