package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cfadesk.org/internal/apitest"
	"cfadesk.org/internal/apitest/apitesting"
	"cfadesk.org/internal/domain"
)

type console struct {
	t     *testing.T
	srv   *apitest.Server
	token string
}

func newConsole(t *testing.T) *console {
	t.Setenv("CFADESK_CONFIG", "")
	t.Setenv("CFADESK_LANG", "fr")
	srv := apitesting.NewServer(t)
	srv.SeedDemo()
	return &console{t: t, srv: srv, token: filepath.Join(t.TempDir(), "session.json")}
}

func (c *console) run(stdin string, args ...string) (int, string, string) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--api", c.srv.URL, "--token-file", c.token}, args...)
	code := run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (c *console) login() {
	c.t.Helper()
	if code, _, errOut := c.run("", "login", "-u", apitest.DemoUser, "-p", apitest.DemoPassword); code != exitOK {
		c.t.Fatalf("login exit %d: %s", code, errOut)
	}
}

func TestCommandsRequireSession(t *testing.T) {
	c := newConsole(t)
	code, _, errOut := c.run("", "candidates", "list")
	if code != exitFailure {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(errOut, "Veuillez vous connecter.") {
		t.Fatalf("stderr = %q", errOut)
	}
	if len(c.srv.CallsTo(http.MethodGet, "/candidats/")) != 0 {
		t.Fatal("guarded command reached the backend")
	}
}

func TestLoginPersistsAndLogoutForgets(t *testing.T) {
	c := newConsole(t)
	code, out, _ := c.run(apitest.DemoPassword+"\n", "login", "-u", apitest.DemoUser)
	if code != exitOK || !strings.Contains(out, "Connexion réussie.") {
		t.Fatalf("login exit %d out %q", code, out)
	}
	if _, err := os.Stat(c.token); err != nil {
		t.Fatalf("token file: %v", err)
	}

	code, out, _ = c.run("", "whoami")
	if code != exitOK || !strings.Contains(out, apitest.DemoUser) {
		t.Fatalf("whoami exit %d out %q", code, out)
	}

	if code, _, _ := c.run("", "logout"); code != exitOK {
		t.Fatalf("logout exit %d", code)
	}
	if code, _, _ := c.run("", "whoami"); code != exitFailure {
		t.Fatalf("whoami after logout exit %d", code)
	}
}

func TestLoginFailureIsGeneric(t *testing.T) {
	c := newConsole(t)
	code, _, errOut := c.run("", "login", "-u", apitest.DemoUser, "-p", "nope")
	if code != exitFailure {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(errOut, "Identifiants incorrects ou erreur serveur.") {
		t.Fatalf("stderr = %q", errOut)
	}
	if _, err := os.Stat(c.token); !os.IsNotExist(err) {
		t.Fatalf("token persisted after failed login: %v", err)
	}
}

func TestBoardListAndMove(t *testing.T) {
	c := newConsole(t)
	c.login()

	code, out, _ := c.run("", "candidates", "list")
	if code != exitOK {
		t.Fatalf("list exit %d", code)
	}
	for _, want := range []string{"== Nouveaux (1)", "== Placés (1)", "== Rejetés (1)", "Alice Martin"} {
		if !strings.Contains(out, want) {
			t.Fatalf("board output missing %q:\n%s", want, out)
		}
	}

	code, out, _ = c.run("", "candidates", "move", "1", "entretien")
	if code != exitOK || !strings.Contains(out, "Statut mis à jour.") {
		t.Fatalf("move exit %d out %q", code, out)
	}
	if got, _ := c.srv.Candidate(1); got.Statut != domain.StatusEntretien {
		t.Fatalf("backend status = %s", got.Statut)
	}

	c.srv.Fail(http.MethodPatch, "/candidats/{id}/status", http.StatusInternalServerError)
	code, _, errOut := c.run("", "candidates", "move", "1", "PLACE")
	if code != exitFailure || !strings.Contains(errOut, "Erreur lors de la mise à jour du statut") {
		t.Fatalf("failed move exit %d stderr %q", code, errOut)
	}
	if got, _ := c.srv.Candidate(1); got.Statut != domain.StatusEntretien {
		t.Fatalf("backend status changed to %s", got.Statut)
	}

	if code, _, _ := c.run("", "candidates", "move", "1", "REJETE"); code != exitFailure {
		t.Fatalf("move to rejected bucket exit %d", code)
	}
}

func TestAmendShowsNewVersion(t *testing.T) {
	c := newConsole(t)
	c.login()

	code, out, errOut := c.run("", "contracts", "amend", "1", "-salaire", "1700")
	if code != exitOK {
		t.Fatalf("amend exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Avenant enregistré") || !strings.Contains(out, "V2") {
		t.Fatalf("amend output:\n%s", out)
	}
	versions := c.srv.Versions(1)
	if len(versions) != 2 || !versions[1].Salaire.Equal(decimal.NewFromInt(1700)) {
		t.Fatalf("versions = %+v", versions)
	}

	if code, _, _ := c.run("", "contracts", "amend", "1"); code != exitUsage {
		t.Fatalf("empty amendment exit %d", code)
	}
}

func TestContractCreatePrecondition(t *testing.T) {
	c := newConsole(t)
	c.login()

	code, _, errOut := c.run("", "contracts", "create", "-company", "1", "-salaire", "1200", "-start", "2025-09-01", "-end", "2026-08-31")
	if code != exitFailure || !strings.Contains(errOut, "Veuillez sélectionner un candidat et une entreprise.") {
		t.Fatalf("exit %d stderr %q", code, errOut)
	}
	if len(c.srv.CallsTo(http.MethodPost, "/contrats/")) != 0 {
		t.Fatal("create sent without both parties")
	}

	code, out, errOut := c.run("", "contracts", "create", "-candidate", "1", "-company", "1", "-salaire", "1200", "-start", "2025-09-01", "-end", "2026-08-31")
	if code != exitOK || !strings.Contains(out, "Contrat créé avec succès !") {
		t.Fatalf("exit %d out %q stderr %q", code, out, errOut)
	}
}

func TestSessionsGenerateAndShowCalendar(t *testing.T) {
	c := newConsole(t)
	c.login()

	code, out, errOut := c.run("", "sessions", "generate", "1", "-days", "lundi,mercredi")
	if code != exitOK || !strings.Contains(out, "jours de formation générés") {
		t.Fatalf("generate exit %d out %q stderr %q", code, out, errOut)
	}
	for _, d := range c.srv.SessionDays(1) {
		day, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			t.Fatalf("day %q: %v", d.Date, err)
		}
		if wd := domain.WeekdayOf(day.Weekday()); wd != domain.Monday && wd != domain.Wednesday {
			t.Fatalf("generated %s on %s", d.Date, wd)
		}
	}

	code, out, _ = c.run("", "contracts", "show", "1")
	if code != exitOK || !strings.Contains(out, "septembre 2025") {
		t.Fatalf("show exit %d out:\n%s", code, out)
	}
}

func TestAttendanceThenInvoice(t *testing.T) {
	c := newConsole(t)
	c.login()
	if code, _, errOut := c.run("", "sessions", "generate", "1", "-days", "lundi"); code != exitOK {
		t.Fatalf("generate exit %d: %s", code, errOut)
	}

	code, out, errOut := c.run("", "attendance", "mark", "1", "-date", "2025-09-15", "-status", "injustifie")
	if code != exitOK || !strings.Contains(out, "Présence enregistrée.") {
		t.Fatalf("mark exit %d out %q stderr %q", code, out, errOut)
	}
	calls := c.srv.CallsTo(http.MethodPost, "/attendance")
	if len(calls) != 1 || !strings.Contains(string(calls[0].Body), `"status":"ABSENT_INJUSTIFIE"`) {
		t.Fatalf("attendance calls = %+v", calls)
	}

	if code, _, _ := c.run("", "attendance", "mark", "1", "-date", "2025-09-16"); code != exitFailure {
		t.Fatalf("non training day exit = %d", code)
	}
	if code, _, _ := c.run("", "attendance", "mark", "1", "-date", "2025-09-15", "-status", "malade"); code != exitUsage {
		t.Fatalf("bad status exit = %d", code)
	}

	// Five Mondays in September, one unjustified absence, 20 € per hour.
	code, out, errOut = c.run("", "invoices", "generate", "1", "-from", "2025-09-01", "-to", "2025-09-30")
	if code != exitOK || !strings.Contains(out, "560,00\u00a0€") || !strings.Contains(out, "BROUILLON") {
		t.Fatalf("generate exit %d out %q stderr %q", code, out, errOut)
	}
	if code, _, _ := c.run("", "invoices", "generate", "1", "-from", "2025-09-30", "-to", "2025-09-01"); code != exitUsage {
		t.Fatalf("reversed period exit = %d", code)
	}
}

func TestDashboardAndExport(t *testing.T) {
	c := newConsole(t)
	c.login()

	code, out, _ := c.run("", "dashboard")
	if code != exitOK || !strings.Contains(out, "8\u202f000,00\u00a0€") {
		t.Fatalf("dashboard exit %d out %q", code, out)
	}

	dir := t.TempDir()
	code, out, errOut := c.run("", "contracts", "export", "1", "-dir", dir)
	if code != exitOK {
		t.Fatalf("export exit %d: %s", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "export_contrat_1.zip")); err != nil {
		t.Fatalf("archive not written: %v (%s)", err, out)
	}

	c.srv.Fail(http.MethodGet, "/analytics/dashboard", http.StatusInternalServerError)
	code, _, errOut = c.run("", "dashboard")
	if code != exitFailure || !strings.Contains(errOut, "Impossible de charger les données du dashboard.") {
		t.Fatalf("failed dashboard exit %d stderr %q", code, errOut)
	}
}

func TestDemoMode(t *testing.T) {
	t.Setenv("CFADESK_CONFIG", "")
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--demo", "--lang", "en", "companies", "list"}, strings.NewReader(""), &out, &errOut)
	if code != exitOK || !strings.Contains(out.String(), "Boulangerie Acme") {
		t.Fatalf("demo exit %d out %q stderr %q", code, out.String(), errOut.String())
	}
}

func TestUsage(t *testing.T) {
	c := newConsole(t)
	cases := [][]string{
		{},
		{"nope"},
		{"contracts"},
		{"contracts", "frobnicate"},
	}
	for _, args := range cases {
		var out, errOut bytes.Buffer
		full := append([]string{"--api", c.srv.URL, "--token-file", c.token}, args...)
		if len(args) == 0 {
			full = nil
		}
		if code := run(context.Background(), full, strings.NewReader(""), &out, &errOut); code != exitUsage {
			t.Fatalf("%v: exit %d", args, code)
		}
	}
}

func TestParseInterleaved(t *testing.T) {
	t.Parallel()
	fs := (&app{errOut: &bytes.Buffer{}}).flags("x")
	dir := fs.String("dir", "", "")
	pos, err := parse(fs, []string{"7", "-dir", "/tmp", "extra"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *dir != "/tmp" || len(pos) != 2 || pos[0] != "7" || pos[1] != "extra" {
		t.Fatalf("dir=%q pos=%v", *dir, pos)
	}
}
