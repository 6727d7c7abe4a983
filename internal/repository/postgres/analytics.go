package postgres

import (
	"context"
	"fmt"

	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
)

type analyticsRepository struct {
	BaseRepository
}

func NewAnalyticsRepository(base BaseRepository) repository.AnalyticsRepository {
	return &analyticsRepository{base}
}

func (r *analyticsRepository) Upsert(ctx context.Context, analytics *model.MessageAnalytics) error {
	// Repeated replies overwrite the row: last-write-wins on message_id.
	query := `
		INSERT INTO message_analytics (
			id, message_id, response_time_hours, response_time_minutes,
			replied_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (message_id) DO UPDATE
		SET response_time_hours = $3,
		    response_time_minutes = $4,
		    replied_at = $5,
		    updated_at = NOW()
	`

	_, err := r.GetDB().ExecContext(ctx, query,
		analytics.ID, analytics.MessageID,
		analytics.ResponseTimeHours, analytics.ResponseTimeMinutes,
		analytics.RepliedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert message analytics: %w", err)
	}

	return nil
}
