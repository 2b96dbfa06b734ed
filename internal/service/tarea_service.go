package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Jairo-Bargas/Api-project/internal/cache"
	dom "github.com/Jairo-Bargas/Api-project/internal/domain"
	"github.com/Jairo-Bargas/Api-project/internal/query"
	"github.com/Jairo-Bargas/Api-project/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

var ErrNotFound = errors.New("not found")

type TareaService struct {
	repo  repo.TareaRepo
	cache *cache.TareaCache
	sf    singleflight.Group
}

// NewTareaService creates a TareaService. If c is nil, caching is disabled.
func NewTareaService(r repo.TareaRepo, c *cache.TareaCache) *TareaService {
	return &TareaService{repo: r, cache: c}
}

// Create persists a new tarea. The owner always comes from the
// authenticated caller, never from the payload.
func (s *TareaService) Create(ctx context.Context, userID int64, titulo, descripcion string, completada bool) (dom.Tarea, error) {
	t, err := s.repo.Create(ctx, dom.Tarea{
		UserID:      userID,
		Titulo:      strings.TrimSpace(titulo),
		Descripcion: descripcion,
		Completada:  completada,
	})
	if err != nil {
		return dom.Tarea{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// List returns one page of the user's tareas plus the pre-pagination total.
func (s *TareaService) List(ctx context.Context, userID int64, p query.Params) ([]dom.Tarea, int64, error) {
	if s.cache == nil {
		return s.repo.List(ctx, userID, p)
	}
	key := "list:" + strconv.FormatInt(userID, 10) + ":" + p.CacheKey()
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if page, err := s.cache.GetList(ctx, userID, p); err == nil && page != nil {
			return *page, nil
		}
		list, total, err := s.repo.List(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		page := cache.ListPage{Tareas: list, Total: total}
		_ = s.cache.SetList(ctx, userID, p, page)
		return page, nil
	})
	if err != nil {
		return nil, 0, err
	}
	page := v.(cache.ListPage)
	return page.Tareas, page.Total, nil
}

func (s *TareaService) GetByID(ctx context.Context, userID, id int64) (dom.Tarea, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Tarea{}, ErrNotFound
		}
		return dom.Tarea{}, err
	}
	return t, nil
}

// Update replaces titulo and descripcion and, when completada is non-nil,
// the completion flag; otherwise the stored flag is kept. A tarea owned by
// someone else is indistinguishable from a missing one.
func (s *TareaService) Update(ctx context.Context, userID, id int64, titulo, descripcion string, completada *bool) (dom.Tarea, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Tarea{}, ErrNotFound
		}
		return dom.Tarea{}, err
	}
	patch := existing
	patch.Titulo = strings.TrimSpace(titulo)
	patch.Descripcion = descripcion
	if completada != nil {
		patch.Completada = *completada
	}
	t, err := s.repo.Update(ctx, userID, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Tarea{}, ErrNotFound
		}
		return dom.Tarea{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Delete removes the tarea and returns its prior representation.
func (s *TareaService) Delete(ctx context.Context, userID, id int64) (dom.Tarea, error) {
	t, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Tarea{}, ErrNotFound
		}
		return dom.Tarea{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

func (s *TareaService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}
