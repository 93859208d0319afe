package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestContractVersionDecodesBackendShape(t *testing.T) {
	t.Parallel()

	body := `{"id":4,"version_number":2,"session_id":null,"salaire":1700.0,"cout_npec":null,
		"heures_formation":400,"date_debut":"2025-09-01","date_fin":"2027-08-31",
		"intitule_poste":"Apprenti","is_active":true}`
	var v ContractVersion
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v.Salaire.Equal(decimal.NewFromInt(1700)) {
		t.Fatalf("salaire = %s", v.Salaire)
	}
	if v.CoutNPEC.Valid {
		t.Fatal("cout_npec should be null")
	}
	if v.SessionID != nil || v.HeuresFormation == nil || *v.HeuresFormation != 400 {
		t.Fatalf("unexpected optional fields: %+v", v)
	}
}

func TestAmendmentFromCopiesEveryField(t *testing.T) {
	t.Parallel()

	sid := int64(9)
	hours := 400
	v := ContractVersion{
		VersionNumber:   1,
		SessionID:       &sid,
		Salaire:         decimal.NewFromInt(1500),
		CoutNPEC:        decimal.NewNullDecimal(decimal.NewFromInt(8000)),
		HeuresFormation: &hours,
		DateDebut:       "2025-09-01",
		DateFin:         "2027-08-31",
		IntitulePoste:   "Développeur",
		IsActive:        true,
	}
	a := AmendmentFrom(v)
	if a.SessionID == nil || *a.SessionID != 9 || a.SessionID == v.SessionID {
		t.Fatalf("session not deep-copied: %v", a.SessionID)
	}
	if a.Salaire == nil || !a.Salaire.Equal(v.Salaire) {
		t.Fatalf("salaire = %v", a.Salaire)
	}
	if a.CoutNPEC == nil || !a.CoutNPEC.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("cout_npec = %v", a.CoutNPEC)
	}
	if a.HeuresFormation == nil || *a.HeuresFormation != 400 || a.HeuresFormation == v.HeuresFormation {
		t.Fatalf("heures not deep-copied: %v", a.HeuresFormation)
	}
	if *a.DateDebut != v.DateDebut || *a.DateFin != v.DateFin || *a.IntitulePoste != v.IntitulePoste {
		t.Fatalf("dates/poste not copied: %+v", a)
	}

	*a.HeuresFormation = 10
	*a.SessionID = 1
	if *v.HeuresFormation != 400 || *v.SessionID != 9 {
		t.Fatal("editing the amendment leaked into the version")
	}
}

func TestAmendmentOmitsUnsetFields(t *testing.T) {
	t.Parallel()

	s := decimal.NewFromInt(1700)
	data, err := json.Marshal(Amendment{Salaire: &s})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got["salaire"] == nil {
		t.Fatalf("expected only salaire, got %s", data)
	}
}

func TestContractCreateValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   ContractCreate
		ok   bool
	}{
		{"missing candidate", ContractCreate{CompanyID: 2}, false},
		{"missing company", ContractCreate{CandidateID: 1}, false},
		{"both", ContractCreate{CandidateID: 1, CompanyID: 2}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrMissingParty) {
				t.Fatalf("expected ErrMissingParty, got %v", err)
			}
		})
	}
}

func TestActiveVersion(t *testing.T) {
	t.Parallel()

	history := []ContractVersion{
		{VersionNumber: 2, IsActive: true},
		{VersionNumber: 1, IsActive: false},
	}
	SortHistory(history)
	if history[0].VersionNumber != 1 {
		t.Fatalf("history not sorted: %+v", history)
	}
	v, ok, err := ActiveVersion(history)
	if err != nil || !ok || v.VersionNumber != 2 {
		t.Fatalf("ActiveVersion = %+v %v %v", v, ok, err)
	}

	if _, ok, err := ActiveVersion(nil); ok || err != nil {
		t.Fatalf("empty history: ok=%v err=%v", ok, err)
	}

	history[0].IsActive = true
	if _, _, err := ActiveVersion(history); !errors.Is(err, ErrMultipleActiveVersions) {
		t.Fatalf("expected ErrMultipleActiveVersions, got %v", err)
	}
}
