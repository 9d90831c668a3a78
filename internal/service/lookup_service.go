package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/repository"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

// LookupInput is the support table item form.
type LookupInput struct {
	Name          string
	ShortName     string
	DisplayInForm bool
}

// LookupService manages the support tables behind the intake form.
type LookupService struct {
	lookups repository.LookupRepository
}

func NewLookupService(lookups repository.LookupRepository) *LookupService {
	return &LookupService{lookups: lookups}
}

func parseKind(raw string) (domain.LookupKind, error) {
	kind := domain.LookupKind(strings.TrimSpace(raw))
	if !kind.Valid() {
		return "", apperrors.NewNotFound("lookup table", map[string]any{"kind": raw})
	}
	return kind, nil
}

// List returns every item of kind, hidden ones included.
func (s *LookupService) List(ctx context.Context, rawKind string) ([]domain.LookupItem, error) {
	kind, err := parseKind(rawKind)
	if err != nil {
		return nil, err
	}
	return s.lookups.ListByKind(ctx, kind, false)
}

func (s *LookupService) Create(ctx context.Context, rawKind string, in LookupInput) (*domain.LookupItem, error) {
	kind, err := parseKind(rawKind)
	if err != nil {
		return nil, err
	}
	item := &domain.LookupItem{Kind: kind}
	if err := applyLookup(item, in); err != nil {
		return nil, err
	}
	if err := s.lookups.Create(ctx, item); err != nil {
		return nil, lookupWriteError(err, item.Name)
	}
	return item, nil
}

func (s *LookupService) Update(ctx context.Context, rawKind, id string, in LookupInput) (*domain.LookupItem, error) {
	kind, err := parseKind(rawKind)
	if err != nil {
		return nil, err
	}
	item, err := s.lookups.GetByID(ctx, id)
	if err != nil || item.Kind != kind {
		if err == nil || isNotFound(err) {
			return nil, apperrors.NewNotFound("lookup item", map[string]any{"id": id, "kind": string(kind)})
		}
		return nil, err
	}
	if err := applyLookup(item, in); err != nil {
		return nil, err
	}
	if err := s.lookups.Update(ctx, item); err != nil {
		return nil, lookupWriteError(err, item.Name)
	}
	return item, nil
}

func applyLookup(item *domain.LookupItem, in LookupInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.NewValidationError("lookup item is invalid", map[string]any{"name": "is required"})
	}
	item.Name = name
	item.ShortName = strings.TrimSpace(in.ShortName)
	item.DisplayInForm = in.DisplayInForm
	return nil
}

func lookupWriteError(err error, name string) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return apperrors.NewConflict("an item with this name already exists", map[string]any{"name": name})
	}
	return err
}
