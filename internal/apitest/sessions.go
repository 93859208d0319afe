package apitest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"cfadesk.org/internal/domain"
)

// AddSession seeds a training session.
func (s *Server) AddSession(in domain.Session) domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = s.next("session")
	stored := in
	s.sessions = append(s.sessions, &stored)
	return in
}

// SessionDays returns the generated days of a session.
func (s *Server) SessionDays(sessionID int64) []domain.SessionDay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SessionDay(nil), s.days[sessionID]...)
}

func (s *Server) findSession(id int64) *domain.Session {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in domain.SessionCreate
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(in.Nom) == "" || !validDate(in.DateDebut) || !validDate(in.DateFin) {
		writeError(w, http.StatusUnprocessableEntity, "nom, date_debut and date_fin are required")
		return
	}
	sess := s.AddSession(domain.Session{
		Nom:             in.Nom,
		DateDebut:       in.DateDebut,
		DateFin:         in.DateFin,
		FormationRNCPID: in.FormationRNCPID,
	})
	writeJSON(w, http.StatusOK, sess)
}

// handleGenerateCalendar replaces the session's days with one full day per
// date between the session bounds whose weekday is selected.
func (s *Server) handleGenerateCalendar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var in domain.CalendarGenerate
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findSession(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	start, err1 := time.Parse(time.DateOnly, sess.DateDebut)
	end, err2 := time.Parse(time.DateOnly, sess.DateFin)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusInternalServerError, "invalid session dates")
		return
	}
	days := []domain.SessionDay{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !in.DaysOfWeek.Has(domain.WeekdayOf(d.Weekday())) {
			continue
		}
		days = append(days, domain.SessionDay{
			ID:          s.next("day"),
			SessionID:   id,
			Date:        d.Format(time.DateOnly),
			IsMorning:   true,
			IsAfternoon: true,
		})
	}
	s.days[id] = days
	writeJSON(w, http.StatusOK, domain.Message{Message: fmt.Sprintf("%d jours de formation générés", len(days))})
}
