package companies

import (
	"context"

	"cfadesk.org/internal/domain"
)

// API is the transport the service needs.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, in, out any) error
}

type Service struct {
	api API
}

func New(api API) *Service { return &Service{api: api} }

func (s *Service) List(ctx context.Context) ([]domain.Company, error) {
	var out []domain.Company
	if err := s.api.GetJSON(ctx, "/entreprises/", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Company{}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in domain.CompanyCreate) (domain.Company, error) {
	if err := in.Validate(); err != nil {
		return domain.Company{}, err
	}
	var out domain.Company
	if err := s.api.PostJSON(ctx, "/entreprises/", in, &out); err != nil {
		return domain.Company{}, err
	}
	return out, nil
}
