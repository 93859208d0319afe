package views

import (
	"github.com/shopspring/decimal"

	"cfadesk.org/internal/domain"
)

// Draft is an amendment form derived once from the active version. It never
// shares memory with the version it came from: setters install fresh values,
// so copies of a Draft cannot observe each other's edits either.
type Draft struct {
	base   domain.Amendment
	values domain.Amendment
}

func newDraft(v domain.ContractVersion) Draft {
	base := domain.AmendmentFrom(v)
	return Draft{base: base, values: base.Clone()}
}

// Values returns a copy of the current form values.
func (d Draft) Values() domain.Amendment { return d.values.Clone() }

// Payload is what SubmitAmendment sends: the pre-filled values with the
// operator's edits applied. Fields unset in the form are omitted.
func (d Draft) Payload() domain.Amendment { return d.values.Clone() }

func (d *Draft) SetSalaire(v decimal.Decimal) { d.values.Salaire = &v }

func (d *Draft) SetCoutNPEC(v decimal.Decimal) { d.values.CoutNPEC = &v }

func (d *Draft) SetHeuresFormation(h int) { d.values.HeuresFormation = &h }

func (d *Draft) SetSessionID(id int64) { d.values.SessionID = &id }

func (d *Draft) SetDateDebut(iso string) { d.values.DateDebut = &iso }

func (d *Draft) SetDateFin(iso string) { d.values.DateFin = &iso }

func (d *Draft) SetIntitulePoste(s string) { d.values.IntitulePoste = &s }

// Changed lists the json names of the fields edited since the form opened.
func (d Draft) Changed() []string {
	var out []string
	b, v := d.base, d.values
	if !eqInt64(b.SessionID, v.SessionID) {
		out = append(out, "session_id")
	}
	if !eqDecimal(b.Salaire, v.Salaire) {
		out = append(out, "salaire")
	}
	if !eqDecimal(b.CoutNPEC, v.CoutNPEC) {
		out = append(out, "cout_npec")
	}
	if !eqInt(b.HeuresFormation, v.HeuresFormation) {
		out = append(out, "heures_formation")
	}
	if !eqString(b.DateDebut, v.DateDebut) {
		out = append(out, "date_debut")
	}
	if !eqString(b.DateFin, v.DateFin) {
		out = append(out, "date_fin")
	}
	if !eqString(b.IntitulePoste, v.IntitulePoste) {
		out = append(out, "intitule_poste")
	}
	return out
}

func eqInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqDecimal(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
