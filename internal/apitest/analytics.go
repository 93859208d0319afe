package apitest

import (
	"math"
	"net/http"

	"github.com/shopspring/decimal"

	"cfadesk.org/internal/domain"
)

// SetRevenue sets the invoiced amount reported as ca_realise.
func (s *Server) SetRevenue(amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revenue = amount
}

// SetHoursDone sets the attended hours reported by the BPF preview.
func (s *Server) SetHoursDone(h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hoursDone = h
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	forecast := decimal.Zero
	for _, d := range s.dossiers {
		if i, ok := d.active(); ok && d.versions[i].CoutNPEC.Valid {
			forecast = forecast.Add(d.versions[i].CoutNPEC.Decimal)
		}
	}
	placed := 0
	for _, c := range s.candidates {
		if c.Statut == domain.StatusPlace {
			placed++
		}
	}
	rate := 0.0
	if n := len(s.candidates); n > 0 {
		rate = math.Round(float64(placed)/float64(n)*100*100) / 100
	}
	writeJSON(w, http.StatusOK, domain.DashboardMetrics{
		TotalCandidats:     len(s.candidates),
		CAPrevisionnel:     forecast,
		CARealise:          s.revenue,
		TauxTransformation: rate,
	})
}

func (s *Server) handleBPF(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.BPFPreview{
		RepartitionSexe:      map[string]int{"H": 0, "F": 0, "AUTRE": 0},
		TotalHeuresRealisees: s.hoursDone + s.presentHours(),
		RepartitionRNCP:      map[string]int{},
	}
	for _, d := range s.sortedDossiers() {
		i, ok := d.active()
		if !ok {
			continue
		}
		switch s.civilites[d.candidateID] {
		case "M":
			out.RepartitionSexe["H"]++
		case "MME":
			out.RepartitionSexe["F"]++
		default:
			out.RepartitionSexe["AUTRE"]++
		}
		if sid := d.versions[i].SessionID; sid != nil {
			if sess := s.findSession(*sid); sess != nil && sess.FormationRNCPID != "" {
				out.RepartitionRNCP[sess.FormationRNCPID]++
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}
