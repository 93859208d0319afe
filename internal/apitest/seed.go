package apitest

import (
	"github.com/shopspring/decimal"

	"cfadesk.org/internal/domain"
)

// Demo credentials created by SeedDemo.
const (
	DemoUser     = "admin@lyon.cfa.com"
	DemoPassword = "secret_lyon"
)

// SeedDemo loads a small tenant: one admin, a few candidates in every lane,
// two companies, one session and one contract linked to it.
func (s *Server) SeedDemo() {
	s.AddUser(DemoUser, DemoPassword, 1, "admin")

	alice := s.AddCandidate(domain.Candidate{FirstName: "Alice", LastName: "Martin", Email: "alice@example.com", Statut: domain.StatusNouveau, TenantID: 1})
	s.AddCandidate(domain.Candidate{FirstName: "Bruno", LastName: "Petit", Statut: domain.StatusAdmissible, TenantID: 1})
	s.AddCandidate(domain.Candidate{FirstName: "Chloé", LastName: "Durand", Statut: domain.StatusEntretien, TenantID: 1})
	placed := s.AddCandidate(domain.Candidate{FirstName: "David", LastName: "Leroy", Statut: domain.StatusPlace, TenantID: 1})
	s.AddCandidate(domain.Candidate{FirstName: "Emma", LastName: "Roux", Statut: domain.StatusRejete, TenantID: 1})

	s.mu.Lock()
	s.civilites[alice.ID] = "MME"
	s.civilites[placed.ID] = "M"
	s.mu.Unlock()

	acme := s.AddCompany(domain.Company{RaisonSociale: "Boulangerie Acme", Siret: "12345678900011", CodeIDCC: "843"})
	s.AddCompany(domain.Company{RaisonSociale: "Garage du Rhône", Siret: "98765432100022"})

	sess := s.AddSession(domain.Session{Nom: "BTS MCO 2025", DateDebut: "2025-09-01", DateFin: "2026-06-30", FormationRNCPID: "RNCP38362"})
	hours := 400
	sid := sess.ID
	s.AddContract(placed.ID, acme.ID, domain.ContractVersion{
		VersionNumber:   1,
		SessionID:       &sid,
		Salaire:         decimal.NewFromInt(1500),
		CoutNPEC:        decimal.NewNullDecimal(decimal.NewFromInt(8000)),
		HeuresFormation: &hours,
		DateDebut:       "2025-09-01",
		DateFin:         "2026-08-31",
		IntitulePoste:   "Vendeur",
		IsActive:        true,
	})
}
