package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceStatus is the presence recorded for one apprentice on one session day.
type AttendanceStatus string

const (
	AttendancePresent           AttendanceStatus = "PRESENT"
	AttendanceAbsentJustified   AttendanceStatus = "ABSENT_JUSTIFIE"
	AttendanceAbsentUnjustified AttendanceStatus = "ABSENT_INJUSTIFIE"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsentJustified, AttendanceAbsentUnjustified:
		return true
	}
	return false
}

// ParseAttendanceStatus accepts the backend names in any case plus the short
// forms present, justifie and injustifie.
func ParseAttendanceStatus(raw string) (AttendanceStatus, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch v {
	case "JUSTIFIE":
		v = string(AttendanceAbsentJustified)
	case "INJUSTIFIE":
		v = string(AttendanceAbsentUnjustified)
	}
	s := AttendanceStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: attendance status %q", ErrInvalidInput, raw)
	}
	return s, nil
}

func (s *AttendanceStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: attendance status %s", ErrInvalidInput, string(b))
	}
	parsed, err := ParseAttendanceStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AttendanceCreate is the body of POST /attendance. The backend keeps one
// record per (session day, contract version) and overwrites it on repeat.
type AttendanceCreate struct {
	SessionDayID      int64            `json:"session_day_id"`
	ContractVersionID int64            `json:"contrat_version_id"`
	Status            AttendanceStatus `json:"status"`
}

func (a AttendanceCreate) Validate() error {
	if a.SessionDayID <= 0 || a.ContractVersionID <= 0 {
		return fmt.Errorf("%w: session_day_id and contrat_version_id are required", ErrInvalidInput)
	}
	if !a.Status.Valid() {
		return fmt.Errorf("%w: attendance status %q", ErrInvalidInput, string(a.Status))
	}
	return nil
}

// Attendance is the stored presence record.
type Attendance struct {
	ID                int64            `json:"id"`
	TenantID          int64            `json:"tenant_id"`
	SessionDayID      int64            `json:"session_day_id"`
	ContractVersionID int64            `json:"contrat_version_id"`
	Status            AttendanceStatus `json:"status"`
}

// InvoiceStatus is the lifecycle of an invoice. Generated invoices start as drafts.
type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "BROUILLON"
	InvoiceIssued InvoiceStatus = "EMISE"
	InvoicePaid   InvoiceStatus = "PAYEE"
)

// InvoiceGenerate is the body of POST /invoices/generate.
type InvoiceGenerate struct {
	DossierID    int64  `json:"contrat_dossier_id"`
	PeriodeDebut string `json:"periode_debut"`
	PeriodeFin   string `json:"periode_fin"`
}

func (g InvoiceGenerate) Validate() error {
	if g.DossierID <= 0 {
		return fmt.Errorf("%w: contrat_dossier_id is required", ErrInvalidInput)
	}
	start, err := time.Parse(time.DateOnly, g.PeriodeDebut)
	if err != nil {
		return fmt.Errorf("%w: periode_debut %q", ErrInvalidInput, g.PeriodeDebut)
	}
	end, err := time.Parse(time.DateOnly, g.PeriodeFin)
	if err != nil {
		return fmt.Errorf("%w: periode_fin %q", ErrInvalidInput, g.PeriodeFin)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: billing period ends before it starts", ErrInvalidInput)
	}
	return nil
}

// Invoice is a generated OPCO invoice for one dossier over a period.
type Invoice struct {
	ID            int64           `json:"id"`
	TenantID      int64           `json:"tenant_id"`
	DossierID     int64           `json:"contrat_dossier_id"`
	NumeroFacture string          `json:"numero_facture"`
	MontantHT     decimal.Decimal `json:"montant_ht"`
	Statut        InvoiceStatus   `json:"statut"`
	DateEmission  string          `json:"date_emission,omitempty"`
	PeriodeDebut  string          `json:"periode_debut,omitempty"`
	PeriodeFin    string          `json:"periode_fin,omitempty"`
}

// HoursPerBilledDay is the training time billed for each scheduled day.
const HoursPerBilledDay = 7

// BillableAmount prices a period: scheduled days minus unjustified absences,
// at HoursPerBilledDay hours each, at the contract's NPEC cost per training
// hour. Contracts without a cost or hours bill nothing.
func BillableAmount(v ContractVersion, scheduledDays, unjustifiedAbsences int) decimal.Decimal {
	if !v.CoutNPEC.Valid || v.HeuresFormation == nil || *v.HeuresFormation <= 0 {
		return decimal.Zero
	}
	days := scheduledDays - unjustifiedAbsences
	if days < 0 {
		days = 0
	}
	hourly := v.CoutNPEC.Decimal.Div(decimal.NewFromInt(int64(*v.HeuresFormation)))
	return decimal.NewFromInt(int64(days * HoursPerBilledDay)).Mul(hourly).Round(2)
}
