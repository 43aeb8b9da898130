package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/repository"
)

var (
	ErrKeywordNotFound = repository.ErrKeywordNotFound
	ErrKeywordExists   = repository.ErrKeywordExists
)

type KeywordRepository interface {
	Create(ctx context.Context, keyword domain.Keyword) (domain.Keyword, error)
	FindByID(ctx context.Context, id uint) (domain.Keyword, error)
	List(ctx context.Context, limit, offset int) ([]domain.Keyword, error)
	Random(ctx context.Context) (domain.Keyword, error)
	Search(ctx context.Context, q string, limit int) ([]domain.Keyword, error)
}

type KeywordService struct {
	repo KeywordRepository
}

func NewKeywordService(repo KeywordRepository) *KeywordService {
	return &KeywordService{
		repo: repo,
	}
}

func (s *KeywordService) CreateKeyword(ctx context.Context, keyword domain.Keyword) (domain.Keyword, error) {
	keyword.Keyword = strings.TrimSpace(keyword.Keyword)

	created, err := s.repo.Create(ctx, keyword)
	if err != nil {
		return domain.Keyword{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *KeywordService) GetKeyword(ctx context.Context, id uint) (domain.Keyword, error) {
	keyword, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Keyword{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return keyword, nil
}

func (s *KeywordService) ListKeywords(ctx context.Context, limit, offset int) ([]domain.Keyword, error) {
	limit, offset = normalizePage(limit, offset)

	keywords, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return keywords, nil
}

func (s *KeywordService) RandomKeyword(ctx context.Context) (domain.Keyword, error) {
	keyword, err := s.repo.Random(ctx)
	if err != nil {
		return domain.Keyword{}, fmt.Errorf("s.repo.Random -> %w", err)
	}

	return keyword, nil
}

func (s *KeywordService) SearchKeywords(ctx context.Context, q string, limit int) ([]domain.Keyword, error) {
	limit, _ = normalizePage(limit, 0)

	keywords, err := s.repo.Search(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Search -> %w", err)
	}

	return keywords, nil
}
