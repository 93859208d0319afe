package views

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"cfadesk.org/internal/apitest"
	"cfadesk.org/internal/apitest/apitesting"
	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/services/contracts"
	"cfadesk.org/internal/services/finance"
	"cfadesk.org/internal/services/pedagogy"
)

type billingFixture struct {
	srv *apitest.Server
	b   *Billing
	rec *Recorder
	id  int64
}

func newBillingFixture(t *testing.T) billingFixture {
	t.Helper()
	srv := apitesting.NewServer(t)
	client, _ := apitesting.Login(t, srv, "a@cfa.fr")
	sess := srv.AddSession(domain.Session{Nom: "BTS", DateDebut: "2025-09-01", DateFin: "2025-09-30"})
	sid := sess.ID
	hours := 400
	id := srv.AddContract(1, 1, domain.ContractVersion{
		VersionNumber:   1,
		SessionID:       &sid,
		Salaire:         decimal.NewFromInt(1500),
		CoutNPEC:        decimal.NewNullDecimal(decimal.NewFromInt(8000)),
		HeuresFormation: &hours,
		DateDebut:       "2025-09-01",
		DateFin:         "2026-08-31",
		IsActive:        true,
	})
	mondays, _ := domain.NewWeekdaySet(domain.Monday)
	if _, err := pedagogy.New(client).GenerateCalendar(context.Background(), sid, mondays); err != nil {
		t.Fatalf("GenerateCalendar: %v", err)
	}
	rec := &Recorder{}
	return billingFixture{
		srv: srv,
		b:   NewBilling(finance.New(client), contracts.New(client), rec, "fr"),
		rec: rec,
		id:  id,
	}
}

func TestMarkAttendanceResolvesDayAndVersion(t *testing.T) {
	t.Parallel()
	f := newBillingFixture(t)
	ctx := context.Background()

	a, err := f.b.MarkAttendance(ctx, f.id, "2025-09-08", domain.AttendanceAbsentUnjustified)
	if err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}
	v := f.srv.Versions(f.id)[0]
	if a.ContractVersionID != v.ID || a.Status != domain.AttendanceAbsentUnjustified {
		t.Fatalf("attendance = %+v", a)
	}
	if n, _ := f.rec.Last(); n.Text != "Présence enregistrée." {
		t.Fatalf("notice = %+v", n)
	}

	// Tuesday is not a training day.
	if _, err := f.b.MarkAttendance(ctx, f.id, "2025-09-09", domain.AttendancePresent); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("err = %v, want ErrPreconditionFailed", err)
	}
	if n := len(f.srv.CallsTo("POST", "/attendance")); n != 1 {
		t.Fatalf("attendance calls = %d, want 1", n)
	}
	if n, _ := f.rec.Last(); n.Level != Alert || n.Text != "Aucun jour de formation à cette date pour ce contrat." {
		t.Fatalf("notice = %+v", n)
	}

	f.srv.Fail("POST", "/attendance", 500)
	if _, err := f.b.MarkAttendance(ctx, f.id, "2025-09-15", domain.AttendancePresent); err == nil {
		t.Fatal("expected failure")
	}
	if n, _ := f.rec.Last(); n.Text != "Erreur lors de l'enregistrement de la présence" {
		t.Fatalf("notice = %+v", n)
	}
}

func TestGenerateInvoiceAfterAbsence(t *testing.T) {
	t.Parallel()
	f := newBillingFixture(t)
	ctx := context.Background()

	if _, err := f.b.MarkAttendance(ctx, f.id, "2025-09-15", domain.AttendanceAbsentUnjustified); err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}
	// Five Mondays in September 2025, one unjustified absence: 4 * 7h * 20.
	inv, err := f.b.GenerateInvoice(ctx, f.id, "2025-09-01", "2025-09-30")
	if err != nil {
		t.Fatalf("GenerateInvoice: %v", err)
	}
	if !inv.MontantHT.Equal(decimal.NewFromInt(560)) || inv.Statut != domain.InvoiceDraft {
		t.Fatalf("invoice = %+v", inv)
	}
	if n, _ := f.rec.Last(); n.Text != "Facture générée (brouillon)." {
		t.Fatalf("notice = %+v", n)
	}

	if _, err := f.b.GenerateInvoice(ctx, f.id, "2025-09-30", "2025-09-01"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("reversed period err = %v", err)
	}
	if n := len(f.srv.CallsTo("POST", "/invoices/generate")); n != 1 {
		t.Fatalf("invoice calls = %d, want 1", n)
	}

	f.srv.Fail("POST", "/invoices/generate", 500)
	if _, err := f.b.GenerateInvoice(ctx, f.id, "2025-10-01", "2025-10-31"); err == nil {
		t.Fatal("expected failure")
	}
	if n, _ := f.rec.Last(); n.Level != Alert || n.Text != "Erreur lors de la génération de la facture" {
		t.Fatalf("notice = %+v", n)
	}
}
