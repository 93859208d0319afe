package contracts

import (
	"context"
	"fmt"

	"cfadesk.org/internal/apiclient"
	"cfadesk.org/internal/domain"
)

// API is the transport the service needs.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, in, out any) error
	PutJSON(ctx context.Context, path string, in, out any) error
	GetBlob(ctx context.Context, path string) (apiclient.Blob, error)
}

// Service is the contract dossier facade. Versioning lives on the server.
type Service struct {
	api API
}

func New(api API) *Service { return &Service{api: api} }

func (s *Service) List(ctx context.Context) ([]domain.ContractDossier, error) {
	var out []domain.ContractDossier
	if err := s.api.GetJSON(ctx, "/contrats/", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ContractDossier{}
	}
	return out, nil
}

// Get returns the dossier with its active version.
func (s *Service) Get(ctx context.Context, id int64) (domain.ContractDetail, error) {
	var out domain.ContractDetail
	if err := s.api.GetJSON(ctx, fmt.Sprintf("/contrats/%d", id), &out); err != nil {
		return domain.ContractDetail{}, err
	}
	return out, nil
}

// History returns every version ordered by version number.
func (s *Service) History(ctx context.Context, id int64) ([]domain.ContractVersion, error) {
	var out []domain.ContractVersion
	if err := s.api.GetJSON(ctx, fmt.Sprintf("/contrats/%d/history", id), &out); err != nil {
		return nil, err
	}
	domain.SortHistory(out)
	return out, nil
}

func (s *Service) Create(ctx context.Context, in domain.ContractCreate) (domain.ContractCreated, error) {
	if err := in.Validate(); err != nil {
		return domain.ContractCreated{}, err
	}
	var out domain.ContractCreated
	if err := s.api.PostJSON(ctx, "/contrats/", in, &out); err != nil {
		return domain.ContractCreated{}, err
	}
	return out, nil
}

// Amend submits an amendment; the server creates the next version.
func (s *Service) Amend(ctx context.Context, id int64, a domain.Amendment) (domain.Message, error) {
	var out domain.Message
	if err := s.api.PutJSON(ctx, fmt.Sprintf("/contrats/%d/avenant", id), a, &out); err != nil {
		return domain.Message{}, err
	}
	return out, nil
}

// Calendar returns the training days of the active version's session.
func (s *Service) Calendar(ctx context.Context, id int64) ([]domain.SessionDay, error) {
	var out []domain.SessionDay
	if err := s.api.GetJSON(ctx, fmt.Sprintf("/contrats/%d/calendar", id), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.SessionDay{}
	}
	return out, nil
}

// Export downloads the dossier archive.
func (s *Service) Export(ctx context.Context, id int64) (apiclient.Blob, error) {
	return s.api.GetBlob(ctx, fmt.Sprintf("/contrats/%d/export-zip", id))
}
