package recruitment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/obs"
)

// API is the transport the service needs.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, in, out any) error
	PatchJSON(ctx context.Context, path string, in, out any) error
	PostMultipart(ctx context.Context, path, field, filename string, r io.Reader, out any) error
}

// Service is the candidate facade.
type Service struct {
	api API
}

func New(api API) *Service { return &Service{api: api} }

// List returns every candidate of the tenant. Rows with a status outside the
// closed set come back unclassified and are logged rather than failing the
// whole list.
func (s *Service) List(ctx context.Context) ([]domain.Candidate, error) {
	var rows []json.RawMessage
	if err := s.api.GetJSON(ctx, "/candidats/", &rows); err != nil {
		return nil, err
	}
	out, err := domain.DecodeCandidates(rows)
	if err != nil {
		obs.Log("warn", "candidate rows decoded partially", map[string]any{
			"rows":  len(rows),
			"kept":  len(out),
			"error": err.Error(),
		})
	}
	return out, nil
}

// ListByStatus filters the full list client-side.
func (s *Service) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Candidate, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, 0, len(all))
	for _, c := range all {
		if c.Statut == status {
			out = append(out, c)
		}
	}
	return out, nil
}

// Upload sends a CV as multipart field "file".
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (domain.UploadResult, error) {
	if strings.TrimSpace(filename) == "" {
		return domain.UploadResult{}, fmt.Errorf("%w: filename required", domain.ErrInvalidInput)
	}
	var out domain.UploadResult
	if err := s.api.PostMultipart(ctx, "/candidats/upload", "file", filename, r, &out); err != nil {
		return domain.UploadResult{}, err
	}
	return out, nil
}

// UpdateStatus issues PATCH /candidats/{id}/status?status=<STATUS>.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Candidate, error) {
	if !status.Valid() {
		return domain.Candidate{}, fmt.Errorf("%w: %q", domain.ErrUnknownStatus, string(status))
	}
	path := fmt.Sprintf("/candidats/%d/status?%s", id, url.Values{"status": {string(status)}}.Encode())
	var out domain.Candidate
	if err := s.api.PatchJSON(ctx, path, nil, &out); err != nil {
		return domain.Candidate{}, err
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in domain.CandidateCreate) (domain.Candidate, error) {
	if err := in.Validate(); err != nil {
		return domain.Candidate{}, err
	}
	var out domain.Candidate
	if err := s.api.PostJSON(ctx, "/candidats/", in, &out); err != nil {
		return domain.Candidate{}, err
	}
	return out, nil
}
