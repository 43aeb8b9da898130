package repository

import (
	"context"
	"fmt"

	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/repository/dao"
)

var (
	ErrKeywordNotFound = dao.ErrKeywordNotFound
	ErrKeywordExists   = dao.ErrKeywordExists
)

type KeywordDAO interface {
	Insert(ctx context.Context, keyword dao.Keyword) (dao.Keyword, error)
	FindByID(ctx context.Context, id uint) (dao.Keyword, error)
	List(ctx context.Context, limit, offset int) ([]dao.Keyword, error)
	Random(ctx context.Context) (dao.Keyword, error)
	Search(ctx context.Context, q string, limit int) ([]dao.Keyword, error)
}

type KeywordRepository struct {
	dao KeywordDAO
}

func NewKeywordRepository(dao KeywordDAO) *KeywordRepository {
	return &KeywordRepository{
		dao: dao,
	}
}

func (r *KeywordRepository) Create(ctx context.Context, keyword domain.Keyword) (domain.Keyword, error) {
	created, err := r.dao.Insert(ctx, dao.Keyword{
		Keyword:  keyword.Keyword,
		Category: keyword.Category,
	})
	if err != nil {
		return domain.Keyword{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *KeywordRepository) FindByID(ctx context.Context, id uint) (domain.Keyword, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Keyword{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *KeywordRepository) List(ctx context.Context, limit, offset int) ([]domain.Keyword, error) {
	found, err := r.dao.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *KeywordRepository) Random(ctx context.Context) (domain.Keyword, error) {
	found, err := r.dao.Random(ctx)
	if err != nil {
		return domain.Keyword{}, fmt.Errorf("r.dao.Random -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *KeywordRepository) Search(ctx context.Context, q string, limit int) ([]domain.Keyword, error) {
	found, err := r.dao.Search(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Search -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *KeywordRepository) daosToDomain(found []dao.Keyword) []domain.Keyword {
	keywords := make([]domain.Keyword, 0, len(found))
	for _, k := range found {
		keywords = append(keywords, r.daoToDomain(k))
	}

	return keywords
}

func (r *KeywordRepository) daoToDomain(k dao.Keyword) domain.Keyword {
	return domain.Keyword{
		ID:        k.ID,
		Keyword:   k.Keyword,
		Category:  k.Category,
		CreatedAt: k.CreatedAt,
	}
}
