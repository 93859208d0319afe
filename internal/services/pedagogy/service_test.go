package pedagogy

import (
	"context"
	"testing"

	"cfadesk.org/internal/apitest/apitesting"
	"cfadesk.org/internal/domain"
)

func TestCreateAndGenerate(t *testing.T) {
	t.Parallel()
	srv := apitesting.NewServer(t)
	client, _ := apitesting.Login(t, srv, "a@cfa.fr")
	svc := New(client)
	ctx := context.Background()

	sess, err := svc.Create(ctx, domain.SessionCreate{Nom: "BTS", DateDebut: "2025-01-06", DateFin: "2025-01-12"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 || list[0].ID != sess.ID {
		t.Fatalf("List = %+v, %v", list, err)
	}

	days, _ := domain.NewWeekdaySet(domain.Monday, domain.Friday)
	msg, err := svc.GenerateCalendar(ctx, sess.ID, days)
	if err != nil {
		t.Fatalf("GenerateCalendar: %v", err)
	}
	if msg.Message != "2 jours de formation générés" {
		t.Fatalf("message = %q", msg.Message)
	}
	calls := srv.CallsTo("POST", "/sessions/1/generate-calendar")
	if string(calls[0].Body) != `{"days_of_week":[0,4]}` {
		t.Fatalf("body = %s", calls[0].Body)
	}

	msg, err = svc.GenerateCalendar(ctx, sess.ID, domain.WeekdaySet(0))
	if err != nil || msg.Message != "0 jours de formation générés" {
		t.Fatalf("empty selection: %q, %v", msg.Message, err)
	}
	if n := len(srv.SessionDays(sess.ID)); n != 0 {
		t.Fatalf("days after empty generation = %d", n)
	}
}
