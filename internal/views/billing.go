package views

import (
	"context"
	"fmt"

	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/i18n"
)

// FinanceAPI is what the billing screen needs from the finance service.
type FinanceAPI interface {
	DeclareAttendance(ctx context.Context, in domain.AttendanceCreate) (domain.Attendance, error)
	GenerateInvoice(ctx context.Context, in domain.InvoiceGenerate) (domain.Invoice, error)
}

// DossierCalendar resolves the active version and calendar of a dossier.
type DossierCalendar interface {
	Get(ctx context.Context, id int64) (domain.ContractDetail, error)
	Calendar(ctx context.Context, id int64) ([]domain.SessionDay, error)
}

// Billing records attendance against a dossier's calendar and generates its
// invoices.
type Billing struct {
	finance   FinanceAPI
	contracts DossierCalendar
	notify    Notifier
	lang      string
}

func NewBilling(finance FinanceAPI, contracts DossierCalendar, n Notifier, lang string) *Billing {
	return &Billing{finance: finance, contracts: contracts, notify: notifierOrDiscard(n), lang: lang}
}

// MarkAttendance records the presence of the dossier's active version on the
// calendar day falling on date (YYYY-MM-DD). Dates outside the calendar are
// refused before anything is sent.
func (b *Billing) MarkAttendance(ctx context.Context, dossierID int64, date string, status domain.AttendanceStatus) (domain.Attendance, error) {
	detail, err := b.contracts.Get(ctx, dossierID)
	if err != nil {
		logFailure("attendance dossier lookup failed", err, map[string]any{"dossier_id": dossierID})
		b.notify.Notify(Alert, i18n.T(b.lang, "attendance_failed"))
		return domain.Attendance{}, err
	}
	if detail.ActiveVersion == nil {
		b.notify.Notify(Alert, i18n.T(b.lang, "attendance_failed"))
		return domain.Attendance{}, fmt.Errorf("%w: %d", ErrNoActiveVersion, dossierID)
	}
	days, err := b.contracts.Calendar(ctx, dossierID)
	if err != nil {
		logFailure("attendance calendar failed", err, map[string]any{"dossier_id": dossierID})
		b.notify.Notify(Alert, i18n.T(b.lang, "attendance_failed"))
		return domain.Attendance{}, err
	}
	var day *domain.SessionDay
	for i := range days {
		if days[i].Date == date {
			day = &days[i]
			break
		}
	}
	if day == nil {
		b.notify.Notify(Alert, i18n.T(b.lang, "attendance_no_day"))
		return domain.Attendance{}, fmt.Errorf("%w: no session day on %s", ErrPreconditionFailed, date)
	}

	in := domain.AttendanceCreate{SessionDayID: day.ID, ContractVersionID: detail.ActiveVersion.ID, Status: status}
	out, err := b.finance.DeclareAttendance(ctx, in)
	if err != nil {
		logFailure("attendance declaration failed", err, map[string]any{
			"dossier_id":     dossierID,
			"session_day_id": day.ID,
			"status":         string(status),
		})
		b.notify.Notify(Alert, i18n.T(b.lang, "attendance_failed"))
		return domain.Attendance{}, err
	}
	b.notify.Notify(Info, i18n.T(b.lang, "attendance_saved"))
	return out, nil
}

// GenerateInvoice bills a dossier over [from, to].
func (b *Billing) GenerateInvoice(ctx context.Context, dossierID int64, from, to string) (domain.Invoice, error) {
	in := domain.InvoiceGenerate{DossierID: dossierID, PeriodeDebut: from, PeriodeFin: to}
	if err := in.Validate(); err != nil {
		return domain.Invoice{}, fmt.Errorf("%w: %v", ErrPreconditionFailed, err)
	}
	inv, err := b.finance.GenerateInvoice(ctx, in)
	if err != nil {
		logFailure("invoice generation failed", err, map[string]any{"dossier_id": dossierID})
		b.notify.Notify(Alert, i18n.T(b.lang, "invoice_failed"))
		return domain.Invoice{}, err
	}
	b.notify.Notify(Info, i18n.T(b.lang, "invoice_generated"))
	return inv, nil
}
