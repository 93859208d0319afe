package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"cfadesk.org/internal/audit"
	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/i18n"
	"cfadesk.org/internal/views"
)

func (a *app) t(code string) string { return i18n.T(a.lang, code) }

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parse accepts flags before, between and after positional arguments.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func (a *app) positionalID(fs *flag.FlagSet, args []string) (int64, error) {
	pos, err := parse(fs, args)
	if err != nil {
		return 0, err
	}
	if len(pos) != 1 {
		fmt.Fprintf(a.errOut, "%s: expected one id\n", fs.Name())
		return 0, errUsage
	}
	id, err := strconv.ParseInt(pos[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(a.errOut, "%s: invalid id %q\n", fs.Name(), pos[0])
		return 0, errUsage
	}
	return id, nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	user := fs.String("u", "", "email")
	pass := fs.String("p", "", "password")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *user == "" {
		fmt.Fprintln(a.errOut, "login: -u is required")
		return errUsage
	}
	if *pass == "" {
		*pass = os.Getenv("CFADESK_PASSWORD")
	}
	if *pass == "" {
		line, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		*pass = strings.TrimRight(line, "\r\n")
	}
	st, err := views.NewLoginView(a.session, a.notify, a.lang).Submit(ctx, *user, *pass)
	if err != nil {
		return err
	}
	id, _ := st.Identity()
	fmt.Fprintf(a.out, "%s (%s)\n", a.t("logged_in"), id.Subject)
	return nil
}

func (a *app) logout() error {
	a.session.Logout()
	a.notify.Notify(views.Info, a.t("logged_out"))
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	p, err := a.identity.Me(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "email\t%s\n", p.Email)
	fmt.Fprintf(tw, "id\t%d\n", p.ID)
	fmt.Fprintf(tw, "tenant\t%d\n", p.TenantID)
	fmt.Fprintf(tw, "role\t%s\n", p.Role)
	return tw.Flush()
}

func (a *app) candidatesList(ctx context.Context, args []string) error {
	fs := a.flags("candidates list")
	status := fs.String("status", "", "only candidates with this status")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if *status != "" {
		st, err := domain.ParseStatus(*status)
		if err != nil {
			fmt.Fprintf(a.errOut, "candidates list: %v\n", err)
			return errUsage
		}
		list, err := a.candidates.ListByStatus(ctx, st)
		if err != nil {
			return err
		}
		a.printCandidates(list)
		return nil
	}

	board := views.NewBoard(a.candidates, a.notify, a.lang)
	if err := board.Load(ctx); err != nil {
		return err
	}
	for _, lane := range board.Lanes() {
		fmt.Fprintf(a.out, "== %s (%d)\n", lane.Title, len(lane.Candidates))
		a.printCandidates(lane.Candidates)
	}
	if rejected := board.Rejected(); len(rejected) > 0 {
		fmt.Fprintf(a.out, "== %s (%d)\n", a.t("rejected"), len(rejected))
		a.printCandidates(rejected)
	}
	if unclassified := board.Unclassified(); len(unclassified) > 0 {
		fmt.Fprintf(a.out, "== %s (%d)\n", a.t("unclassified"), len(unclassified))
		a.printCandidates(unclassified)
	}
	return nil
}

func (a *app) printCandidates(list []domain.Candidate) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range list {
		email := c.Email
		if email == "" {
			email = "-"
		}
		status := string(c.Statut)
		if status == "" {
			status = "-"
		}
		fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\n", c.ID, c.FullName(), email, status)
	}
	_ = tw.Flush()
}

func (a *app) candidatesMove(ctx context.Context, args []string) error {
	fs := a.flags("candidates move")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		fmt.Fprintln(a.errOut, "candidates move: expected ID STATUS")
		return errUsage
	}
	id, err := strconv.ParseInt(pos[0], 10, 64)
	if err != nil {
		fmt.Fprintf(a.errOut, "candidates move: invalid id %q\n", pos[0])
		return errUsage
	}
	st, err := domain.ParseStatus(pos[1])
	if err != nil {
		fmt.Fprintf(a.errOut, "candidates move: %v\n", err)
		return errUsage
	}
	col, err := domain.ColumnFor(st)
	if err != nil {
		return err
	}

	board := views.NewBoard(a.candidates, a.notify, a.lang)
	if err := board.Load(ctx); err != nil {
		return err
	}
	if err := board.Move(ctx, id, col); err != nil {
		if errors.Is(err, views.ErrPreconditionFailed) || errors.Is(err, views.ErrCandidateNotFound) {
			fmt.Fprintf(a.errOut, "candidates move: %v\n", err)
		}
		return err
	}
	_ = audit.LogEvent(ctx, "candidate.move", map[string]any{"candidate_id": id, "status": string(st)})
	a.notify.Notify(views.Info, a.t("status_updated"))
	return nil
}

func (a *app) candidatesUpload(ctx context.Context, args []string) error {
	fs := a.flags("candidates upload")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		fmt.Fprintln(a.errOut, "candidates upload: expected FILE")
		return errUsage
	}
	f, err := os.Open(pos[0])
	if err != nil {
		return err
	}
	defer f.Close()

	board := views.NewBoard(a.candidates, a.notify, a.lang)
	a.notify.Notify(views.Info, a.t("upload_loading"))
	c, err := board.Upload(ctx, filepath.Base(pos[0]), f)
	if err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "candidate.upload", map[string]any{"candidate_id": c.ID, "filename": c.CVFilename})
	a.notify.Notify(views.Info, a.t("upload_done"))
	a.printCandidates([]domain.Candidate{c})
	return nil
}

func (a *app) candidatesCreate(ctx context.Context, args []string) error {
	fs := a.flags("candidates create")
	var in domain.CandidateCreate
	var status string
	fs.StringVar(&in.FirstName, "first", "", "first name")
	fs.StringVar(&in.LastName, "last", "", "last name")
	fs.StringVar(&in.Email, "email", "", "email")
	fs.StringVar(&in.Civilite, "civilite", "", "M or MME")
	fs.StringVar(&status, "status", "", "initial status")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if status != "" {
		st, err := domain.ParseStatus(status)
		if err != nil {
			fmt.Fprintf(a.errOut, "candidates create: %v\n", err)
			return errUsage
		}
		in.Statut = st
	}
	if err := in.Validate(); err != nil {
		fmt.Fprintf(a.errOut, "candidates create: %v\n", err)
		return errUsage
	}
	c, err := a.candidates.Create(ctx, in)
	if err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "candidate.create", map[string]any{"candidate_id": c.ID})
	a.notify.Notify(views.Info, a.t("candidate_created"))
	a.printCandidates([]domain.Candidate{c})
	return nil
}

func (a *app) contractsList(ctx context.Context, args []string) error {
	if _, err := parse(a.flags("contracts list"), args); err != nil {
		return err
	}
	list, err := views.NewContractList(a.contracts, a.candidates, a.companies).Load(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, d := range list {
		version := "-"
		if d.ActiveVersion != nil {
			version = "V" + strconv.Itoa(d.ActiveVersion.VersionNumber)
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\n", d.ID, d.Title(), version)
	}
	return tw.Flush()
}

// decimalFlag is a flag.Value holding an optional amount.
type decimalFlag struct {
	v   decimal.Decimal
	set bool
}

func (d *decimalFlag) String() string {
	if !d.set {
		return ""
	}
	return d.v.String()
}

func (d *decimalFlag) Set(s string) error {
	v, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
	if err != nil {
		return err
	}
	d.v, d.set = v, true
	return nil
}

func (a *app) contractsCreate(ctx context.Context, args []string) error {
	fs := a.flags("contracts create")
	var (
		in          domain.ContractCreate
		salaire     decimalFlag
		npec        decimalFlag
		hours       int
		session     int64
		showChoices bool
	)
	fs.Int64Var(&in.CandidateID, "candidate", 0, "candidate id")
	fs.Int64Var(&in.CompanyID, "company", 0, "company id")
	fs.Var(&salaire, "salaire", "gross monthly salary")
	fs.Var(&npec, "npec", "NPEC training cost")
	fs.IntVar(&hours, "hours", 0, "training hours")
	fs.Int64Var(&session, "session", 0, "session id")
	fs.StringVar(&in.DateDebut, "start", "", "start date YYYY-MM-DD")
	fs.StringVar(&in.DateFin, "end", "", "end date YYYY-MM-DD")
	fs.StringVar(&in.IntitulePoste, "poste", "", "job title")
	fs.BoolVar(&showChoices, "choices", false, "list selectable candidates and companies")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	if showChoices {
		ch, err := views.NewContractList(a.contracts, a.candidates, a.companies).LoadChoices(ctx)
		if err != nil {
			return err
		}
		a.printCandidates(ch.Candidates)
		a.printCompanies(ch.Companies)
		return nil
	}

	in.Salaire = salaire.v
	if npec.set {
		v := npec.v
		in.CoutNPEC = &v
	}
	if hours > 0 {
		in.HeuresFormation = &hours
	}
	if session > 0 {
		in.SessionID = &session
	}
	out, err := views.NewContractForm(a.contracts, a.notify, a.lang).Submit(ctx, in)
	if err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "contract.create", map[string]any{"dossier_id": out.DossierID})
	if out.Message != "" {
		fmt.Fprintln(a.out, out.Message)
	}
	fmt.Fprintf(a.out, "#%d\n", out.DossierID)
	return nil
}

func (a *app) contractsShow(ctx context.Context, args []string) error {
	id, err := a.positionalID(a.flags("contracts show"), args)
	if err != nil {
		return err
	}
	detail := views.NewContractDetail(a.contracts, a.notify, a.lang, id)
	if err := detail.Load(ctx); err != nil {
		return err
	}
	a.printDetail(detail.Snapshot())
	return nil
}

func (a *app) printDetail(s views.DetailSnapshot) {
	fmt.Fprintln(a.out, s.Dossier.Title())
	if v := s.ActiveVersion; v != nil {
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "version\tV%d\n", v.VersionNumber)
		fmt.Fprintf(tw, "poste\t%s\n", v.IntitulePoste)
		fmt.Fprintf(tw, "salaire\t%s\n", views.FormatEUR(a.lang, v.Salaire))
		if v.CoutNPEC.Valid {
			fmt.Fprintf(tw, "npec\t%s\n", views.FormatEUR(a.lang, v.CoutNPEC.Decimal))
		}
		if v.HeuresFormation != nil {
			fmt.Fprintf(tw, "heures\t%d\n", *v.HeuresFormation)
		}
		fmt.Fprintf(tw, "dates\t%s - %s\n", views.FormatDate(a.lang, v.DateDebut), views.FormatDate(a.lang, v.DateFin))
		_ = tw.Flush()
	}
	if s.HistoryErr != nil {
		fmt.Fprintf(a.errOut, "history: %v\n", s.HistoryErr)
	}
	fmt.Fprintln(a.out, "-- historique")
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, v := range s.History {
		mark := ""
		if v.IsActive {
			mark = "*"
		}
		fmt.Fprintf(tw, "V%d%s\t%s\t%s\n", v.VersionNumber, mark, views.FormatEUR(a.lang, v.Salaire), views.FormatDate(a.lang, v.DateDebut))
	}
	_ = tw.Flush()

	fmt.Fprintln(a.out, "-- calendrier")
	months := views.GroupByMonth(a.lang, s.Calendar)
	if len(months) == 0 {
		fmt.Fprintln(a.out, a.t("calendar_empty"))
		return
	}
	for _, m := range months {
		fmt.Fprintf(a.out, "%s\n", m.Label)
		for _, d := range m.Days {
			fmt.Fprintf(a.out, "  %s %s  %.1fh\n", d.Weekday, d.Day, d.Hours)
		}
	}
}

func (a *app) contractsAmend(ctx context.Context, args []string) error {
	fs := a.flags("contracts amend")
	var (
		salaire, npec decimalFlag
		hours         int
		session       int64
		start, end    string
		poste         string
	)
	fs.Var(&salaire, "salaire", "new salary")
	fs.Var(&npec, "npec", "new NPEC cost")
	fs.IntVar(&hours, "hours", 0, "new training hours")
	fs.Int64Var(&session, "session", 0, "new session id")
	fs.StringVar(&start, "start", "", "new start date")
	fs.StringVar(&end, "end", "", "new end date")
	fs.StringVar(&poste, "poste", "", "new job title")
	id, err := a.positionalID(fs, args)
	if err != nil {
		return err
	}

	detail := views.NewContractDetail(a.contracts, a.notify, a.lang, id)
	if err := detail.Load(ctx); err != nil {
		return err
	}
	draft, err := detail.OpenAmendment()
	if err != nil {
		fmt.Fprintf(a.errOut, "contracts amend: %v\n", err)
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "salaire":
			draft.SetSalaire(salaire.v)
		case "npec":
			draft.SetCoutNPEC(npec.v)
		case "hours":
			draft.SetHeuresFormation(hours)
		case "session":
			draft.SetSessionID(session)
		case "start":
			draft.SetDateDebut(start)
		case "end":
			draft.SetDateFin(end)
		case "poste":
			draft.SetIntitulePoste(poste)
		}
	})
	changed := draft.Changed()
	if len(changed) == 0 {
		a.notify.Notify(views.Alert, a.t("amendment_unchanged"))
		return errUsage
	}
	if err := detail.SubmitAmendment(ctx, draft); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "contract.amend", map[string]any{"dossier_id": id, "changed": changed})
	a.printDetail(detail.Snapshot())
	return nil
}

func (a *app) contractsExport(ctx context.Context, args []string) error {
	fs := a.flags("contracts export")
	dir := fs.String("dir", ".", "destination directory")
	id, err := a.positionalID(fs, args)
	if err != nil {
		return err
	}
	path, err := views.NewExporter(a.contracts, a.notify, a.lang).Export(ctx, id, *dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", a.t("export_saved"), path)
	return nil
}

func (a *app) sessionsList(ctx context.Context, args []string) error {
	if _, err := parse(a.flags("sessions list"), args); err != nil {
		return err
	}
	m := views.NewSessionManager(a.pedagogy, a.notify, a.lang)
	if err := m.Load(ctx); err != nil {
		return err
	}
	a.printSessions(m.Sessions())
	return nil
}

func (a *app) printSessions(list []domain.Session) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, s := range list {
		rncp := s.FormationRNCPID
		if rncp == "" {
			rncp = "-"
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s - %s\n", s.ID, s.Nom, rncp, views.FormatDate(a.lang, s.DateDebut), views.FormatDate(a.lang, s.DateFin))
	}
	_ = tw.Flush()
}

func (a *app) sessionsCreate(ctx context.Context, args []string) error {
	fs := a.flags("sessions create")
	var in domain.SessionCreate
	fs.StringVar(&in.Nom, "nom", "", "session name")
	fs.StringVar(&in.DateDebut, "start", "", "start date YYYY-MM-DD")
	fs.StringVar(&in.DateFin, "end", "", "end date YYYY-MM-DD")
	fs.StringVar(&in.FormationRNCPID, "rncp", "", "RNCP code")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		fmt.Fprintf(a.errOut, "sessions create: %v\n", err)
		return errUsage
	}
	m := views.NewSessionManager(a.pedagogy, a.notify, a.lang)
	s, err := m.Create(ctx, in)
	if err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "session.create", map[string]any{"session_id": s.ID})
	a.notify.Notify(views.Info, a.t("session_created"))
	a.printSessions([]domain.Session{s})
	return nil
}

func (a *app) sessionsGenerate(ctx context.Context, args []string) error {
	fs := a.flags("sessions generate")
	days := fs.String("days", "", "comma separated weekdays, names or 0..6 (default lundi)")
	id, err := a.positionalID(fs, args)
	if err != nil {
		return err
	}
	m := views.NewSessionManager(a.pedagogy, a.notify, a.lang)
	m.Select(id)
	if *days != "" {
		want, err := parseWeekdays(*days)
		if err != nil {
			fmt.Fprintf(a.errOut, "sessions generate: %v\n", err)
			return errUsage
		}
		for _, d := range domain.AllWeekdays {
			if m.Selection().Has(d) != want.Has(d) {
				if err := m.ToggleDay(d); err != nil {
					return err
				}
			}
		}
	}
	if _, err := m.Generate(ctx); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "calendar.generate", map[string]any{"session_id": id, "days": m.Selection().Days()})
	return nil
}

func parseWeekdays(raw string) (domain.WeekdaySet, error) {
	var days []domain.Weekday
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := domain.ParseWeekday(part)
		if err != nil {
			return 0, err
		}
		days = append(days, d)
	}
	return domain.NewWeekdaySet(days...)
}

func (a *app) companiesList(ctx context.Context, args []string) error {
	if _, err := parse(a.flags("companies list"), args); err != nil {
		return err
	}
	list, err := a.companies.List(ctx)
	if err != nil {
		return err
	}
	a.printCompanies(list)
	return nil
}

func (a *app) printCompanies(list []domain.Company) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range list {
		siret := c.Siret
		if siret == "" {
			siret = "-"
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\n", c.ID, c.RaisonSociale, siret)
	}
	_ = tw.Flush()
}

func (a *app) companiesCreate(ctx context.Context, args []string) error {
	fs := a.flags("companies create")
	var in domain.CompanyCreate
	fs.StringVar(&in.RaisonSociale, "name", "", "raison sociale")
	fs.StringVar(&in.Siret, "siret", "", "SIRET")
	fs.StringVar(&in.Adresse, "adresse", "", "postal address")
	fs.StringVar(&in.CodeIDCC, "idcc", "", "IDCC collective agreement code")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		fmt.Fprintf(a.errOut, "companies create: %v\n", err)
		return errUsage
	}
	c, err := a.companies.Create(ctx, in)
	if err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "company.create", map[string]any{"company_id": c.ID})
	a.notify.Notify(views.Info, a.t("company_created"))
	a.printCompanies([]domain.Company{c})
	return nil
}

func (a *app) attendanceMark(ctx context.Context, args []string) error {
	fs := a.flags("attendance mark")
	date := fs.String("date", "", "training day, YYYY-MM-DD")
	rawStatus := fs.String("status", "present", "present, justifie or injustifie")
	id, err := a.positionalID(fs, args)
	if err != nil {
		return err
	}
	status, err := domain.ParseAttendanceStatus(*rawStatus)
	if err != nil || *date == "" {
		fmt.Fprintf(a.errOut, "attendance mark: -date and a valid -status are required\n")
		return errUsage
	}
	att, err := views.NewBilling(a.finance, a.contracts, a.notify, a.lang).MarkAttendance(ctx, id, *date, status)
	if err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "attendance.declare", map[string]any{
		"dossier_id":         id,
		"session_day_id":     att.SessionDayID,
		"contrat_version_id": att.ContractVersionID,
		"status":             string(att.Status),
	})
	fmt.Fprintf(a.out, "%s\t%s\n", *date, att.Status)
	return nil
}

func (a *app) invoicesGenerate(ctx context.Context, args []string) error {
	fs := a.flags("invoices generate")
	from := fs.String("from", "", "period start, YYYY-MM-DD")
	to := fs.String("to", "", "period end, YYYY-MM-DD")
	id, err := a.positionalID(fs, args)
	if err != nil {
		return err
	}
	inv, err := views.NewBilling(a.finance, a.contracts, a.notify, a.lang).GenerateInvoice(ctx, id, *from, *to)
	if errors.Is(err, views.ErrPreconditionFailed) {
		fmt.Fprintf(a.errOut, "invoices generate: %v\n", err)
		return errUsage
	}
	if err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "invoice.generate", map[string]any{"dossier_id": id, "invoice_id": inv.ID, "montant_ht": inv.MontantHT.String()})
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "numero\t%s\n", inv.NumeroFacture)
	fmt.Fprintf(tw, "periode\t%s - %s\n", views.FormatDate(a.lang, inv.PeriodeDebut), views.FormatDate(a.lang, inv.PeriodeFin))
	fmt.Fprintf(tw, "montant HT\t%s\n", views.FormatEUR(a.lang, inv.MontantHT))
	fmt.Fprintf(tw, "statut\t%s\n", inv.Statut)
	_ = tw.Flush()
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	v := views.NewDashboard(a.analytics, a.lang).Load(ctx)
	if v.Error != "" {
		fmt.Fprintln(a.errOut, v.Error)
		return errors.New(v.Error)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "candidats\t%d\n", v.Metrics.TotalCandidats)
	fmt.Fprintf(tw, "CA prévisionnel\t%s\n", v.Forecast)
	fmt.Fprintf(tw, "CA réalisé\t%s\n", v.Realised)
	fmt.Fprintf(tw, "transformation\t%s\n", v.Rate)
	return tw.Flush()
}

func (a *app) bpf(ctx context.Context) error {
	p, err := views.NewDashboard(a.analytics, a.lang).BPF(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "heures réalisées\t%.1f\n", p.TotalHeuresRealisees)
	for _, k := range sortedKeys(p.RepartitionSexe) {
		fmt.Fprintf(tw, "sexe %s\t%d\n", k, p.RepartitionSexe[k])
	}
	for _, k := range sortedKeys(p.RepartitionRNCP) {
		fmt.Fprintf(tw, "rncp %s\t%d\n", k, p.RepartitionRNCP[k])
	}
	return tw.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
