package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecommendationRepository handles recommendation audit records.
type RecommendationRepository struct {
	pool *pgxpool.Pool
}

// NewRecommendation marshals the three audit payloads into a Recommendation.
func NewRecommendation(userID string, playlistID *uuid.UUID, input, analysis, params any) (*Recommendation, error) {
	rec := &Recommendation{UserID: userID, PlaylistID: playlistID}

	var err error
	if rec.InputData, err = json.Marshal(input); err != nil {
		return nil, fmt.Errorf("encoding input data: %w", err)
	}
	if rec.Analysis, err = json.Marshal(analysis); err != nil {
		return nil, fmt.Errorf("encoding analysis: %w", err)
	}
	if rec.SearchParams, err = json.Marshal(params); err != nil {
		return nil, fmt.Errorf("encoding search params: %w", err)
	}
	return rec, nil
}

// Create inserts a recommendation record. A nil ID is replaced with a fresh UUID.
func (r *RecommendationRepository) Create(ctx context.Context, rec *Recommendation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	query := `
		INSERT INTO recommendations (id, user_id, playlist_id, input_data, analysis, search_params, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.PlaylistID,
		rec.InputData,
		rec.Analysis,
		rec.SearchParams,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting recommendation: %w", err)
	}
	return nil
}
