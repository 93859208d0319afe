package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ContractVersion is an immutable snapshot of a dossier's terms. Amendments
// never edit a version; the backend deactivates it and appends version_number+1.
type ContractVersion struct {
	ID              int64               `json:"id"`
	VersionNumber   int                 `json:"version_number"`
	SessionID       *int64              `json:"session_id"`
	Salaire         decimal.Decimal     `json:"salaire"`
	CoutNPEC        decimal.NullDecimal `json:"cout_npec"`
	HeuresFormation *int                `json:"heures_formation"`
	DateDebut       string              `json:"date_debut"`
	DateFin         string              `json:"date_fin"`
	IntitulePoste   string              `json:"intitule_poste"`
	IsActive        bool                `json:"is_active"`
}

// Clone returns a copy sharing no pointers with v.
func (v ContractVersion) Clone() ContractVersion {
	out := v
	if v.SessionID != nil {
		id := *v.SessionID
		out.SessionID = &id
	}
	if v.HeuresFormation != nil {
		h := *v.HeuresFormation
		out.HeuresFormation = &h
	}
	return out
}

// CandidateRef is the candidate summary embedded in a dossier.
type CandidateRef struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

// CompanyRef is the company summary embedded in a dossier.
type CompanyRef struct {
	ID            int64  `json:"id"`
	RaisonSociale string `json:"raison_sociale"`
	Siret         string `json:"siret,omitempty"`
}

// ContractDossier binds one candidate to one company and owns the version chain.
type ContractDossier struct {
	ID            int64             `json:"id"`
	CandidateID   int64             `json:"candidat_id,omitempty"`
	CompanyID     int64             `json:"entreprise_id,omitempty"`
	Candidate     *CandidateRef     `json:"candidat,omitempty"`
	Company       *CompanyRef       `json:"entreprise"`
	ActiveVersion *ContractVersion  `json:"active_version,omitempty"`
	Versions      []ContractVersion `json:"versions,omitempty"`
}

// Title is the heading used for a dossier: candidate name and company.
func (d ContractDossier) Title() string {
	name := fmt.Sprintf("Contrat #%d", d.ID)
	if d.Candidate != nil {
		name = fmt.Sprintf("Contrat %s %s", d.Candidate.FirstName, d.Candidate.LastName)
	}
	if d.Company != nil && d.Company.RaisonSociale != "" {
		name += " - " + d.Company.RaisonSociale
	}
	return name
}

// ContractDetail is the answer of GET /contrats/{id}.
type ContractDetail struct {
	Dossier       ContractDossier  `json:"dossier"`
	ActiveVersion *ContractVersion `json:"active_version"`
}

// ContractCreate is the body of POST /contrats/; it carries the terms of version 1.
type ContractCreate struct {
	CandidateID     int64            `json:"candidat_id"`
	CompanyID       int64            `json:"entreprise_id"`
	SessionID       *int64           `json:"session_id,omitempty"`
	Salaire         decimal.Decimal  `json:"salaire"`
	CoutNPEC        *decimal.Decimal `json:"cout_npec,omitempty"`
	HeuresFormation *int             `json:"heures_formation,omitempty"`
	DateDebut       string           `json:"date_debut"`
	DateFin         string           `json:"date_fin"`
	IntitulePoste   string           `json:"intitule_poste,omitempty"`
}

// Validate enforces the client-side precondition: both parties selected.
func (c ContractCreate) Validate() error {
	if c.CandidateID == 0 || c.CompanyID == 0 {
		return ErrMissingParty
	}
	return nil
}

// ContractCreated is the answer of POST /contrats/.
type ContractCreated struct {
	DossierID int64  `json:"dossier_id"`
	Message   string `json:"message"`
}

// Amendment (avenant) is a partial update; nil fields are not sent.
type Amendment struct {
	SessionID       *int64           `json:"session_id,omitempty"`
	Salaire         *decimal.Decimal `json:"salaire,omitempty"`
	CoutNPEC        *decimal.Decimal `json:"cout_npec,omitempty"`
	HeuresFormation *int             `json:"heures_formation,omitempty"`
	DateDebut       *string          `json:"date_debut,omitempty"`
	DateFin         *string          `json:"date_fin,omitempty"`
	IntitulePoste   *string          `json:"intitule_poste,omitempty"`
}

// AmendmentFrom copies every editable field of v into a fresh amendment.
func AmendmentFrom(v ContractVersion) Amendment {
	v = v.Clone()
	salaire := v.Salaire
	debut, fin, poste := v.DateDebut, v.DateFin, v.IntitulePoste
	a := Amendment{
		SessionID:       v.SessionID,
		Salaire:         &salaire,
		HeuresFormation: v.HeuresFormation,
		DateDebut:       &debut,
		DateFin:         &fin,
		IntitulePoste:   &poste,
	}
	if v.CoutNPEC.Valid {
		npec := v.CoutNPEC.Decimal
		a.CoutNPEC = &npec
	}
	return a
}

// Clone returns a deep copy of a.
func (a Amendment) Clone() Amendment {
	out := Amendment{}
	if a.SessionID != nil {
		v := *a.SessionID
		out.SessionID = &v
	}
	if a.Salaire != nil {
		v := *a.Salaire
		out.Salaire = &v
	}
	if a.CoutNPEC != nil {
		v := *a.CoutNPEC
		out.CoutNPEC = &v
	}
	if a.HeuresFormation != nil {
		v := *a.HeuresFormation
		out.HeuresFormation = &v
	}
	if a.DateDebut != nil {
		v := *a.DateDebut
		out.DateDebut = &v
	}
	if a.DateFin != nil {
		v := *a.DateFin
		out.DateFin = &v
	}
	if a.IntitulePoste != nil {
		v := *a.IntitulePoste
		out.IntitulePoste = &v
	}
	return out
}

// Message is the generic {"message": ...} answer of mutating endpoints.
type Message struct {
	Message string `json:"message"`
}

// SortHistory orders versions by version_number ascending, as the backend does.
func SortHistory(versions []ContractVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].VersionNumber < versions[j].VersionNumber
	})
}

// ActiveVersion returns the single active version of a history.
// A history with several active versions yields ErrMultipleActiveVersions.
func ActiveVersion(versions []ContractVersion) (ContractVersion, bool, error) {
	var (
		found  ContractVersion
		active int
	)
	for _, v := range versions {
		if v.IsActive {
			found = v
			active++
		}
	}
	switch active {
	case 0:
		return ContractVersion{}, false, nil
	case 1:
		return found, true, nil
	default:
		return found, true, fmt.Errorf("%w: %d", ErrMultipleActiveVersions, active)
	}
}
