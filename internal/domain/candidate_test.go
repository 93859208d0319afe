package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStatusDecodeRejectsUnknown(t *testing.T) {
	t.Parallel()

	var c Candidate
	err := json.Unmarshal([]byte(`{"id":1,"statut":"ARCHIVE"}`), &c)
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}

	if err := json.Unmarshal([]byte(`{"id":7,"statut":"entretien"}`), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Statut != StatusEntretien {
		t.Fatalf("statut = %q, want ENTRETIEN", c.Statut)
	}
}

func TestColumnForIsExhaustive(t *testing.T) {
	t.Parallel()

	seen := map[Column]Status{}
	for _, s := range Statuses {
		col, err := ColumnFor(s)
		if err != nil {
			t.Fatalf("ColumnFor(%s): %v", s, err)
		}
		if prev, dup := seen[col]; dup {
			t.Fatalf("%s and %s share column %d", prev, s, col)
		}
		seen[col] = s
		if col.Status() != s {
			t.Fatalf("column %d maps back to %s, want %s", col, col.Status(), s)
		}
	}
	if _, err := ColumnFor("PERDU"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}

	rejected, _ := ColumnFor(StatusRejete)
	if rejected.OnBoard() {
		t.Fatal("REJETE must not be a board lane")
	}
	if len(BoardColumns) != 4 {
		t.Fatalf("expected four lanes, got %d", len(BoardColumns))
	}
	for _, c := range BoardColumns {
		if !c.OnBoard() {
			t.Fatalf("lane %s reported off board", c.Title())
		}
	}
}

func TestUploadResultCandidate(t *testing.T) {
	t.Parallel()

	var res UploadResult
	body := `{"id":12,"email_detected":"jane@example.org","text_preview":"CV...","status":"NOUVEAU"}`
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	c := res.Candidate("jane.pdf")
	if c.ID != 12 || c.Email != "jane@example.org" || c.CVFilename != "jane.pdf" || c.Statut != StatusNouveau {
		t.Fatalf("unexpected candidate: %+v", c)
	}

	c = UploadResult{ID: 3}.Candidate("x.pdf")
	if c.Statut != StatusNouveau || c.Email != "" {
		t.Fatalf("defaults not applied: %+v", c)
	}
}

func TestCandidateCreateValidate(t *testing.T) {
	t.Parallel()

	if err := (CandidateCreate{FirstName: "A"}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := (CandidateCreate{FirstName: "A", LastName: "B", Statut: "X"}).Validate(); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if err := (CandidateCreate{FirstName: "A", LastName: "B"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatusNullIsUnclassified(t *testing.T) {
	t.Parallel()

	var c Candidate
	if err := json.Unmarshal([]byte(`{"id":3,"statut":null}`), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Statut != "" || c.Statut.Valid() {
		t.Fatalf("statut = %q, want empty", c.Statut)
	}
	col, err := ColumnFor(c.Statut)
	if err != nil || col != ColumnUnclassified || col.OnBoard() {
		t.Fatalf("ColumnFor(empty) = %d, %v", col, err)
	}
	if col.Status() != "" || col.Title() != "Sans statut" {
		t.Fatalf("unclassified column maps to %q / %q", col.Status(), col.Title())
	}
}

func TestDecodeCandidatesKeepsGoodRows(t *testing.T) {
	t.Parallel()

	rows := []json.RawMessage{
		json.RawMessage(`{"id":1,"first_name":"Ana","last_name":"B","statut":"NOUVEAU"}`),
		json.RawMessage(`{"id":2,"first_name":"Léo","last_name":"C","statut":"ARCHIVE"}`),
		json.RawMessage(`{"id":3,"first_name":"Zoé","last_name":"D","statut":null}`),
		json.RawMessage(`"not an object"`),
	}
	got, err := DecodeCandidates(rows)
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("err = %v, want ErrUnknownStatus joined", err)
	}
	if len(got) != 3 {
		t.Fatalf("kept %d rows, want 3: %+v", len(got), got)
	}
	if got[0].Statut != StatusNouveau {
		t.Fatalf("row 1 statut = %q", got[0].Statut)
	}
	if got[1].ID != 2 || got[1].FirstName != "Léo" || got[1].Statut != "" {
		t.Fatalf("unknown status row = %+v", got[1])
	}
	if got[2].ID != 3 || got[2].Statut != "" {
		t.Fatalf("null status row = %+v", got[2])
	}

	if _, err := DecodeCandidates(rows[:1]); err != nil {
		t.Fatalf("clean list err = %v", err)
	}
}
