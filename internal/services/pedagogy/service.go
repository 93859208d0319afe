package pedagogy

import (
	"context"
	"fmt"

	"cfadesk.org/internal/domain"
)

// API is the transport the service needs.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, in, out any) error
}

// Service is the training-session facade.
type Service struct {
	api API
}

func New(api API) *Service { return &Service{api: api} }

func (s *Service) List(ctx context.Context) ([]domain.Session, error) {
	var out []domain.Session
	if err := s.api.GetJSON(ctx, "/sessions/", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Session{}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in domain.SessionCreate) (domain.Session, error) {
	if err := in.Validate(); err != nil {
		return domain.Session{}, err
	}
	var out domain.Session
	if err := s.api.PostJSON(ctx, "/sessions/", in, &out); err != nil {
		return domain.Session{}, err
	}
	return out, nil
}

// GenerateCalendar asks the server to regenerate the session days for the
// given weekdays. An empty set is forwarded as-is.
func (s *Service) GenerateCalendar(ctx context.Context, sessionID int64, days domain.WeekdaySet) (domain.Message, error) {
	var out domain.Message
	path := fmt.Sprintf("/sessions/%d/generate-calendar", sessionID)
	if err := s.api.PostJSON(ctx, path, domain.CalendarGenerate{DaysOfWeek: days}, &out); err != nil {
		return domain.Message{}, err
	}
	return out, nil
}
