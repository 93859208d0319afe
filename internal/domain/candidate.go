package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Status is the recruitment pipeline status of a candidate. The set is closed:
// values outside it are rejected at decode time. The backend column is
// nullable, so null decodes to the empty status.
type Status string

const (
	StatusNouveau    Status = "NOUVEAU"
	StatusAdmissible Status = "ADMISSIBLE"
	StatusEntretien  Status = "ENTRETIEN"
	StatusPlace      Status = "PLACE"
	StatusRejete     Status = "REJETE"
)

// Statuses lists every known status in pipeline order.
var Statuses = []Status{StatusNouveau, StatusAdmissible, StatusEntretien, StatusPlace, StatusRejete}

// ParseStatus accepts a status name in any case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusNouveau, StatusAdmissible, StatusEntretien, StatusPlace, StatusRejete:
		return true
	}
	return false
}

func (s *Status) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownStatus, string(b))
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Column is where a candidate is shown on the recruitment board.
type Column int

const (
	ColumnNouveau Column = iota
	ColumnAdmissible
	ColumnEntretien
	ColumnPlace
	// ColumnRejected holds REJETE candidates; it is not a board lane.
	ColumnRejected
	// ColumnUnclassified holds candidates without a usable status.
	ColumnUnclassified
)

// BoardColumns are the four fixed lanes, left to right.
var BoardColumns = []Column{ColumnNouveau, ColumnAdmissible, ColumnEntretien, ColumnPlace}

// ColumnFor maps every status to exactly one column.
func ColumnFor(s Status) (Column, error) {
	switch s {
	case StatusNouveau:
		return ColumnNouveau, nil
	case StatusAdmissible:
		return ColumnAdmissible, nil
	case StatusEntretien:
		return ColumnEntretien, nil
	case StatusPlace:
		return ColumnPlace, nil
	case StatusRejete:
		return ColumnRejected, nil
	case "":
		return ColumnUnclassified, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
}

// OnBoard reports whether the column is one of the four lanes.
func (c Column) OnBoard() bool { return c >= ColumnNouveau && c <= ColumnPlace }

// Status is the status a card takes when dropped in the column.
func (c Column) Status() Status {
	switch c {
	case ColumnNouveau:
		return StatusNouveau
	case ColumnAdmissible:
		return StatusAdmissible
	case ColumnEntretien:
		return StatusEntretien
	case ColumnPlace:
		return StatusPlace
	case ColumnRejected:
		return StatusRejete
	}
	return ""
}

// Title is the lane heading shown to operators.
func (c Column) Title() string {
	switch c {
	case ColumnNouveau:
		return "Nouveaux"
	case ColumnAdmissible:
		return "Admissibles"
	case ColumnEntretien:
		return "Entretiens"
	case ColumnPlace:
		return "Placés"
	case ColumnRejected:
		return "Rejetés"
	}
	return "Sans statut"
}

// Candidate is a recruitment candidate as returned by GET /candidats/.
type Candidate struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email,omitempty"`
	Statut     Status `json:"statut"`
	CVFilename string `json:"cv_filename,omitempty"`
	TenantID   int64  `json:"tenant_id"`
}

// DecodeCandidates decodes a candidate list row by row. A row whose status is
// outside the closed set is kept with an empty status and its error joined to
// the returned one; rows that cannot be decoded at all are dropped.
func DecodeCandidates(rows []json.RawMessage) ([]Candidate, error) {
	out := make([]Candidate, 0, len(rows))
	var errs []error
	for i, row := range rows {
		var c Candidate
		err := json.Unmarshal(row, &c)
		if err == nil {
			out = append(out, c)
			continue
		}
		if !errors.Is(err, ErrUnknownStatus) {
			errs = append(errs, fmt.Errorf("row %d: %w", i, err))
			continue
		}
		lax, laxErr := decodeWithoutStatus(row)
		if laxErr != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i, laxErr))
			continue
		}
		errs = append(errs, fmt.Errorf("candidate %d: %w", lax.ID, err))
		out = append(out, lax)
	}
	return out, errors.Join(errs...)
}

func decodeWithoutStatus(row json.RawMessage) (Candidate, error) {
	type plain Candidate
	var aux struct {
		plain
		Statut json.RawMessage `json:"statut"`
	}
	if err := json.Unmarshal(row, &aux); err != nil {
		return Candidate{}, err
	}
	c := Candidate(aux.plain)
	c.Statut = ""
	return c, nil
}

func (c Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CandidateCreate is the body of POST /candidats/.
type CandidateCreate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Civilite  string `json:"civilite,omitempty"`
	Statut    Status `json:"statut,omitempty"`
}

func (c CandidateCreate) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return fmt.Errorf("%w: first_name and last_name are required", ErrInvalidInput)
	}
	if c.Statut != "" && !c.Statut.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(c.Statut))
	}
	return nil
}

// UploadResult is the answer of POST /candidats/upload: the backend parses the
// CV and creates a skeleton candidate.
type UploadResult struct {
	ID            int64   `json:"id"`
	EmailDetected *string `json:"email_detected"`
	TextPreview   string  `json:"text_preview"`
	Status        Status  `json:"status"`
}

// Candidate turns the upload summary into the record shown on the board.
func (u UploadResult) Candidate(filename string) Candidate {
	c := Candidate{
		ID:         u.ID,
		FirstName:  "Candidat",
		LastName:   "Inconnu",
		Statut:     u.Status,
		CVFilename: filename,
	}
	if c.Statut == "" {
		c.Statut = StatusNouveau
	}
	if u.EmailDetected != nil {
		c.Email = *u.EmailDetected
	}
	return c
}
