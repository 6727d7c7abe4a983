package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
)

const templateCacheTTL = 5 * time.Minute

type templateRepository struct {
	BaseRepository
	cache *cache.Cache
}

func NewTemplateRepository(base BaseRepository) repository.TemplateRepository {
	return &templateRepository{
		BaseRepository: base,
		cache:          cache.New(templateCacheTTL, 10*time.Minute),
	}
}

func (r *templateRepository) GetActiveByType(ctx context.Context, templateType model.TemplateType) (*model.EmailTemplate, error) {
	cacheKey := string(templateType)
	if cached, found := r.cache.Get(cacheKey); found {
		return cached.(*model.EmailTemplate), nil
	}

	query := `
		SELECT id, template_type, subject, html, text, is_active, created_at, updated_at
		FROM email_templates
		WHERE template_type = $1
		AND is_active = true
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var tpl model.EmailTemplate
	if err := r.GetDB().GetContext(ctx, &tpl, query, templateType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	r.cache.Set(cacheKey, &tpl, cache.DefaultExpiration)
	return &tpl, nil
}
