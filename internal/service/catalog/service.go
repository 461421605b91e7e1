package catalog

import (
	"casebox_backend/internal/model"
	"casebox_backend/internal/repository"
	"casebox_backend/internal/service"
	"context"
	"fmt"
)

type serv struct {
	repo repository.CatalogRepository
}

// NewCatalogService - доступ движка к каталогу кейсов (только чтение)
func NewCatalogService(repo repository.CatalogRepository) service.CatalogService {
	return &serv{repo: repo}
}

// GetCase возвращает активный кейс
func (s *serv) GetCase(ctx context.Context, id int64) (*model.Case, error) {
	c, err := s.repo.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, model.ErrCaseInactive
	}
	return c, nil
}

// GetActiveSortablePrizes возвращает призы, которые могут выпасть.
// Пустой список или нулевая сумма весов - ошибка конфигурации кейса, а не проигрыш игрока
func (s *serv) GetActiveSortablePrizes(ctx context.Context, caseID int64) ([]model.Prize, error) {
	prizes, err := s.repo.GetActiveSortablePrizes(ctx, caseID)
	if err != nil {
		return nil, err
	}

	drawable := make([]model.Prize, 0, len(prizes))
	var totalWeight float64
	for _, p := range prizes {
		if !p.Drawable() {
			continue
		}
		drawable = append(drawable, p)
		if p.Probability > 0 {
			totalWeight += p.Probability
		}
	}

	if len(drawable) == 0 || totalWeight <= 0 {
		return nil, fmt.Errorf("case %d: %w", caseID, model.ErrEmptyCatalog)
	}
	return drawable, nil
}
