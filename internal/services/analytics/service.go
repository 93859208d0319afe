package analytics

import (
	"context"

	"cfadesk.org/internal/domain"
)

// API is the transport the service needs.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
}

// Service reads server-computed metrics.
type Service struct {
	api API
}

func New(api API) *Service { return &Service{api: api} }

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardMetrics, error) {
	var out domain.DashboardMetrics
	if err := s.api.GetJSON(ctx, "/analytics/dashboard", &out); err != nil {
		return domain.DashboardMetrics{}, err
	}
	return out, nil
}

func (s *Service) BPFPreview(ctx context.Context) (domain.BPFPreview, error) {
	var out domain.BPFPreview
	if err := s.api.GetJSON(ctx, "/analytics/bpf-preview", &out); err != nil {
		return domain.BPFPreview{}, err
	}
	return out, nil
}
