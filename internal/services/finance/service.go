// Package finance declares attendance and generates OPCO invoices.
package finance

import (
	"context"

	"cfadesk.org/internal/domain"
)

// API is the transport the service needs.
type API interface {
	PostJSON(ctx context.Context, path string, in, out any) error
}

// Service is the attendance and billing facade.
type Service struct {
	api API
}

func New(api API) *Service { return &Service{api: api} }

// DeclareAttendance records the presence of a contract version on a session
// day. Declaring twice overwrites the first status.
func (s *Service) DeclareAttendance(ctx context.Context, in domain.AttendanceCreate) (domain.Attendance, error) {
	if err := in.Validate(); err != nil {
		return domain.Attendance{}, err
	}
	var out domain.Attendance
	if err := s.api.PostJSON(ctx, "/attendance", in, &out); err != nil {
		return domain.Attendance{}, err
	}
	return out, nil
}

// GenerateInvoice bills the active version of a dossier over a period. The
// invoice comes back as a draft.
func (s *Service) GenerateInvoice(ctx context.Context, in domain.InvoiceGenerate) (domain.Invoice, error) {
	if err := in.Validate(); err != nil {
		return domain.Invoice{}, err
	}
	var out domain.Invoice
	if err := s.api.PostJSON(ctx, "/invoices/generate", in, &out); err != nil {
		return domain.Invoice{}, err
	}
	return out, nil
}
