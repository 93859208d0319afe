package apitest

import (
	"fmt"
	"net/http"
	"time"

	"cfadesk.org/internal/domain"
)

type attendanceKey struct {
	dayID, versionID int64
}

// Attendance returns the stored presence of a contract version on a day.
func (s *Server) Attendance(dayID, versionID int64) (domain.Attendance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attendance[attendanceKey{dayID, versionID}]
	if !ok {
		return domain.Attendance{}, false
	}
	return *a, true
}

// Invoices returns the generated invoices in creation order.
func (s *Server) Invoices() []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, *inv)
	}
	return out
}

func (s *Server) findDay(id int64) (domain.SessionDay, bool) {
	for _, days := range s.days {
		for _, d := range days {
			if d.ID == id {
				return d, true
			}
		}
	}
	return domain.SessionDay{}, false
}

func (s *Server) findVersion(id int64) (domain.ContractVersion, bool) {
	for _, d := range s.dossiers {
		for _, v := range d.versions {
			if v.ID == id {
				return v, true
			}
		}
	}
	return domain.ContractVersion{}, false
}

// presentHours sums the nominal hours of the days marked PRESENT.
func (s *Server) presentHours() float64 {
	var h float64
	for key, a := range s.attendance {
		if a.Status != domain.AttendancePresent {
			continue
		}
		if d, ok := s.findDay(key.dayID); ok {
			h += d.Hours()
		}
	}
	return h
}

// handleAttendance upserts the presence of one version on one session day.
func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	var in domain.AttendanceCreate
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	tenant := claimsFrom(r.Context()).TenantID

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findDay(in.SessionDayID); !ok {
		writeError(w, http.StatusNotFound, "Session day not found")
		return
	}
	if _, ok := s.findVersion(in.ContractVersionID); !ok {
		writeError(w, http.StatusNotFound, "Contract version not found")
		return
	}
	key := attendanceKey{in.SessionDayID, in.ContractVersionID}
	a, ok := s.attendance[key]
	if !ok {
		a = &domain.Attendance{
			ID:                s.next("attendance"),
			TenantID:          tenant,
			SessionDayID:      in.SessionDayID,
			ContractVersionID: in.ContractVersionID,
		}
		s.attendance[key] = a
	}
	a.Status = in.Status
	writeJSON(w, http.StatusOK, *a)
}

// handleGenerateInvoice bills the active version of a dossier over a period:
// the session days inside both the period and the contract dates, less the
// unjustified absences recorded in the period.
func (s *Server) handleGenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var in domain.InvoiceGenerate
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	tenant := claimsFrom(r.Context()).TenantID

	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dossiers[in.DossierID]
	if !ok {
		writeError(w, http.StatusNotFound, "Dossier not found")
		return
	}
	i, ok := d.active()
	if !ok {
		writeError(w, http.StatusBadRequest, "No active version")
		return
	}
	v := d.versions[i]

	inPeriod := func(date string) bool { return date >= in.PeriodeDebut && date <= in.PeriodeFin }
	scheduled := 0
	if v.SessionID != nil {
		for _, day := range s.days[*v.SessionID] {
			if inPeriod(day.Date) && day.Date >= v.DateDebut && day.Date <= v.DateFin {
				scheduled++
			}
		}
	}
	unjustified := 0
	for key, a := range s.attendance {
		if key.versionID != v.ID || a.Status != domain.AttendanceAbsentUnjustified {
			continue
		}
		if day, ok := s.findDay(key.dayID); ok && inPeriod(day.Date) {
			unjustified++
		}
	}

	today := s.now()
	inv := &domain.Invoice{
		ID:            s.next("invoice"),
		TenantID:      tenant,
		DossierID:     d.id,
		NumeroFacture: fmt.Sprintf("F%d-%d-%d", today.Year(), d.id, int(today.Month())),
		MontantHT:     domain.BillableAmount(v, scheduled, unjustified),
		Statut:        domain.InvoiceDraft,
		DateEmission:  today.Format(time.DateOnly),
		PeriodeDebut:  in.PeriodeDebut,
		PeriodeFin:    in.PeriodeFin,
	}
	s.invoices = append(s.invoices, inv)
	writeJSON(w, http.StatusOK, *inv)
}
