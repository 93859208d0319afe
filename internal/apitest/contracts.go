package apitest

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"cfadesk.org/internal/domain"
)

// AddCompany seeds a company.
func (s *Server) AddCompany(c domain.Company) domain.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.next("company")
	stored := c
	s.companies = append(s.companies, &stored)
	return c
}

func (s *Server) findCompany(id int64) *domain.Company {
	for _, c := range s.companies {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// AddContract seeds a dossier with the given version chain. Version ids are
// assigned; the caller decides which versions are active.
func (s *Server) AddContract(candidateID, companyID int64, versions ...domain.ContractVersion) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &dossier{id: s.next("dossier"), candidateID: candidateID, companyID: companyID}
	for _, v := range versions {
		v = v.Clone()
		v.ID = s.next("version")
		d.versions = append(d.versions, v)
	}
	s.dossiers[d.id] = d
	return d.id
}

// Versions returns the server-side chain of a dossier.
func (s *Server) Versions(id int64) []domain.ContractVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dossiers[id]
	if !ok {
		return nil
	}
	out := make([]domain.ContractVersion, 0, len(d.versions))
	for _, v := range d.versions {
		out = append(out, v.Clone())
	}
	return out
}

func (d *dossier) active() (int, bool) {
	for i, v := range d.versions {
		if v.IsActive {
			return i, true
		}
	}
	return 0, false
}

func (s *Server) dossierView(d *dossier, withVersions bool) domain.ContractDossier {
	out := domain.ContractDossier{ID: d.id, CandidateID: d.candidateID, CompanyID: d.companyID}
	if c := s.findCandidate(d.candidateID); c != nil {
		out.Candidate = &domain.CandidateRef{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email}
	}
	if c := s.findCompany(d.companyID); c != nil {
		out.Company = &domain.CompanyRef{ID: c.ID, RaisonSociale: c.RaisonSociale, Siret: c.Siret}
	}
	if i, ok := d.active(); ok {
		v := d.versions[i].Clone()
		out.ActiveVersion = &v
	}
	if withVersions {
		for _, v := range d.versions {
			out.Versions = append(out.Versions, v.Clone())
		}
	}
	return out
}

func (s *Server) sortedDossiers() []*dossier {
	out := make([]*dossier, 0, len(s.dossiers))
	for _, d := range s.dossiers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]domain.ContractDossier, 0, len(s.dossiers))
	for _, d := range s.sortedDossiers() {
		out = append(out, s.dossierView(d, false))
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var in domain.ContractCreate
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !validDate(in.DateDebut) || !validDate(in.DateFin) {
		writeError(w, http.StatusUnprocessableEntity, "date_debut and date_fin must be YYYY-MM-DD")
		return
	}
	s.mu.Lock()
	if s.findCandidate(in.CandidateID) == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Candidat not found")
		return
	}
	if s.findCompany(in.CompanyID) == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Entreprise not found")
		return
	}
	poste := in.IntitulePoste
	if poste == "" {
		poste = "Apprenti"
	}
	v1 := domain.ContractVersion{
		ID:              s.next("version"),
		VersionNumber:   1,
		SessionID:       in.SessionID,
		Salaire:         in.Salaire,
		HeuresFormation: in.HeuresFormation,
		DateDebut:       in.DateDebut,
		DateFin:         in.DateFin,
		IntitulePoste:   poste,
		IsActive:        true,
	}
	if in.CoutNPEC != nil {
		v1.CoutNPEC = decimal.NewNullDecimal(*in.CoutNPEC)
	}
	d := &dossier{
		id:          s.next("dossier"),
		tenantID:    claimsFrom(r.Context()).TenantID,
		candidateID: in.CandidateID,
		companyID:   in.CompanyID,
		versions:    []domain.ContractVersion{v1.Clone()},
	}
	s.dossiers[d.id] = d
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, domain.ContractCreated{DossierID: d.id, Message: "Contrat créé V1"})
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.RLock()
	d, ok := s.dossiers[id]
	var out domain.ContractDetail
	if ok {
		out.Dossier = s.dossierView(d, true)
		out.ActiveVersion = out.Dossier.ActiveVersion
	}
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAmend deactivates the active version and appends version_number+1.
// session, NPEC cost and hours carry over when the amendment omits them.
func (s *Server) handleAmend(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var in domain.Amendment
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dossiers[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Contrat Dossier not found")
		return
	}
	if in.Salaire == nil || in.DateDebut == nil || in.DateFin == nil {
		writeError(w, http.StatusUnprocessableEntity, "salaire, date_debut and date_fin are required")
		return
	}
	if !validDate(*in.DateDebut) || !validDate(*in.DateFin) {
		writeError(w, http.StatusUnprocessableEntity, "date_debut and date_fin must be YYYY-MM-DD")
		return
	}

	next := domain.ContractVersion{
		VersionNumber: 1,
		Salaire:       *in.Salaire,
		DateDebut:     *in.DateDebut,
		DateFin:       *in.DateFin,
		IntitulePoste: "Avenant",
		IsActive:      true,
	}
	if i, ok := d.active(); ok {
		cur := d.versions[i].Clone()
		d.versions[i].IsActive = false
		next.VersionNumber = cur.VersionNumber + 1
		next.SessionID = cur.SessionID
		next.CoutNPEC = cur.CoutNPEC
		next.HeuresFormation = cur.HeuresFormation
		next.IntitulePoste = cur.IntitulePoste
	}
	if in.SessionID != nil {
		v := *in.SessionID
		next.SessionID = &v
	}
	if in.CoutNPEC != nil {
		next.CoutNPEC = decimal.NewNullDecimal(*in.CoutNPEC)
	}
	if in.HeuresFormation != nil {
		v := *in.HeuresFormation
		next.HeuresFormation = &v
	}
	if in.IntitulePoste != nil && *in.IntitulePoste != "" {
		next.IntitulePoste = *in.IntitulePoste
	}
	next.ID = s.next("version")
	d.versions = append(d.versions, next)
	writeJSON(w, http.StatusOK, domain.Message{
		Message: fmt.Sprintf("Avenant créé. Nouvelle version : %d", next.VersionNumber),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	out := s.Versions(id)
	if out == nil {
		out = []domain.ContractVersion{}
	}
	domain.SortHistory(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dossiers[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Contrat actif non trouvé")
		return
	}
	i, ok := d.active()
	if !ok {
		writeError(w, http.StatusNotFound, "Contrat actif non trouvé")
		return
	}
	v := d.versions[i]
	if v.SessionID == nil {
		writeError(w, http.StatusBadRequest, "Aucune session liée à ce contrat")
		return
	}
	out := []domain.SessionDay{}
	for _, day := range s.days[*v.SessionID] {
		if day.Date >= v.DateDebut && day.Date <= v.DateFin {
			out = append(out, day)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.mu.RLock()
	d, ok := s.dossiers[id]
	var (
		view   domain.ContractDossier
		cv     storedFile
		hasCV  bool
		active bool
	)
	if ok {
		view = s.dossierView(d, false)
		_, active = d.active()
		cv, hasCV = s.cvs[d.candidateID]
	}
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Contrat introuvable")
		return
	}
	if !active {
		writeError(w, http.StatusBadRequest, "Aucune version active pour ce contrat")
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if f, err := zw.Create("contrat.json"); err == nil {
		_ = json.NewEncoder(f).Encode(view)
	}
	if f, err := zw.Create("details.txt"); err == nil {
		_, _ = fmt.Fprintf(f, "Dossier ID: %d\nVersion Active: %d\n", view.ID, view.ActiveVersion.VersionNumber)
	}
	if hasCV {
		if f, err := zw.Create(cv.name); err == nil {
			_, _ = f.Write(cv.data)
		}
	}
	if err := zw.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=export_contrat_%d.zip", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
