// Command cfadesk is the operator console of a CFA: recruitment board,
// apprenticeship contracts and amendments, training calendars and the
// management dashboard, all served by the CFA backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"cfadesk.org/internal/apiclient"
	"cfadesk.org/internal/apitest"
	"cfadesk.org/internal/audit"
	"cfadesk.org/internal/auth"
	"cfadesk.org/internal/config"
	"cfadesk.org/internal/ids"
	"cfadesk.org/internal/obs"
	"cfadesk.org/internal/services/analytics"
	"cfadesk.org/internal/services/companies"
	"cfadesk.org/internal/services/contracts"
	"cfadesk.org/internal/services/finance"
	"cfadesk.org/internal/services/identity"
	"cfadesk.org/internal/services/pedagogy"
	"cfadesk.org/internal/services/recruitment"
	"cfadesk.org/internal/views"
)

var version = "0.3.0"

const (
	exitOK = iota
	exitFailure
	exitUsage
)

var errUsage = errors.New("usage")

func main() {
	// stdout carries command output; diagnostics go to stderr.
	obs.Logger().SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type globals struct {
	api       string
	lang      string
	tokenFile string
	demo      bool
}

type app struct {
	lang   string
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	notify views.Notifier

	session     *auth.Session
	identity    *identity.Service
	candidates  *recruitment.Service
	contracts   *contracts.Service
	pedagogy    *pedagogy.Service
	companies   *companies.Service
	analytics   *analytics.Service
	finance     *finance.Service
	closeServer func()
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("cfadesk", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var g globals
	fs.StringVar(&g.api, "api", "", "backend base URL (overrides CFADESK_API_URL)")
	fs.StringVar(&g.lang, "lang", "", "interface language: fr or en")
	fs.StringVar(&g.tokenFile, "token-file", "", "where the session token is kept")
	fs.BoolVar(&g.demo, "demo", false, "run against an in-process demo backend")
	fs.Usage = func() { usage(errOut) }
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		usage(errOut)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return exitFailure
	}
	a, err := newApp(ctx, cfg, g, in, out, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "cfadesk: %v\n", err)
		return exitFailure
	}
	defer a.close()

	err = a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return exitUsage
	default:
		return exitFailure
	}
}

func newApp(ctx context.Context, cfg config.Config, g globals, in io.Reader, out, errOut io.Writer) (*app, error) {
	if g.api != "" {
		cfg.API.URL = g.api
	}
	if g.lang != "" {
		cfg.Lang = g.lang
	}
	if g.tokenFile != "" {
		cfg.TokenFile = g.tokenFile
	}

	a := &app{
		lang:   cfg.Lang,
		in:     in,
		out:    out,
		errOut: errOut,
		notify: views.WriterNotifier{Out: out, Err: errOut},
	}

	var store auth.TokenStore
	if g.demo {
		srv := apitest.New()
		srv.SeedDemo()
		if err := srv.Start(); err != nil {
			return nil, err
		}
		a.closeServer = srv.Close
		cfg.API.URL = srv.URL
		store = auth.NewMemoryStore("")
	} else {
		path := cfg.TokenFile
		if path == "" {
			var err error
			if path, err = auth.DefaultTokenPath(); err != nil {
				return nil, fmt.Errorf("token file: %w", err)
			}
		}
		store = auth.NewFileStore(path)
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL:       cfg.API.URL,
		Timeout:       cfg.API.Timeout,
		RatePerSecond: cfg.API.Rate,
		Burst:         cfg.API.Burst,
		UserAgent:     "cfadesk/" + version,
	}, store)
	if err != nil {
		a.close()
		return nil, err
	}

	a.identity = identity.New(client)
	a.candidates = recruitment.New(client)
	a.contracts = contracts.New(client)
	a.pedagogy = pedagogy.New(client)
	a.companies = companies.New(client)
	a.analytics = analytics.New(client)
	a.finance = finance.New(client)
	a.session = auth.NewSession(store, a.identity)
	a.session.Init()

	if g.demo {
		if _, err := a.session.Login(ctx, apitest.DemoUser, apitest.DemoPassword); err != nil {
			a.close()
			return nil, fmt.Errorf("demo login: %w", err)
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.closeServer != nil {
		a.closeServer()
	}
}

// guarded runs a command that needs a session. The request context carries
// the identity and one request id shared by every audit line of the command.
func (a *app) guarded(ctx context.Context, fn func(context.Context) error) error {
	if _, err := a.session.Require(); err != nil {
		a.notify.Notify(views.Alert, a.t("login_required"))
		return err
	}
	ctx = auth.ContextWithState(ctx, a.session.Current())
	ctx = audit.WithRequestID(ctx, ids.New())
	return fn(ctx)
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout()
	case "whoami":
		return a.guarded(ctx, a.whoami)
	case "candidates":
		return a.sub(ctx, "candidates", args, map[string]command{
			"list":   a.candidatesList,
			"move":   a.candidatesMove,
			"upload": a.candidatesUpload,
			"create": a.candidatesCreate,
		})
	case "contracts":
		return a.sub(ctx, "contracts", args, map[string]command{
			"list":   a.contractsList,
			"create": a.contractsCreate,
			"show":   a.contractsShow,
			"amend":  a.contractsAmend,
			"export": a.contractsExport,
		})
	case "sessions":
		return a.sub(ctx, "sessions", args, map[string]command{
			"list":     a.sessionsList,
			"create":   a.sessionsCreate,
			"generate": a.sessionsGenerate,
		})
	case "companies":
		return a.sub(ctx, "companies", args, map[string]command{
			"list":   a.companiesList,
			"create": a.companiesCreate,
		})
	case "attendance":
		return a.sub(ctx, "attendance", args, map[string]command{
			"mark": a.attendanceMark,
		})
	case "invoices":
		return a.sub(ctx, "invoices", args, map[string]command{
			"generate": a.invoicesGenerate,
		})
	case "dashboard":
		return a.guarded(ctx, a.dashboard)
	case "bpf":
		return a.guarded(ctx, a.bpf)
	case "help":
		usage(a.out)
		return nil
	default:
		fmt.Fprintf(a.errOut, "unknown command %q\n", cmd)
		usage(a.errOut)
		return errUsage
	}
}

type command func(ctx context.Context, args []string) error

func (a *app) sub(ctx context.Context, group string, args []string, cmds map[string]command) error {
	if len(args) == 0 {
		fmt.Fprintf(a.errOut, "usage: cfadesk %s <subcommand>\n", group)
		return errUsage
	}
	fn, ok := cmds[args[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "unknown %s subcommand %q\n", group, args[0])
		return errUsage
	}
	return a.guarded(ctx, func(ctx context.Context) error { return fn(ctx, args[1:]) })
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: cfadesk [--api URL] [--lang fr|en] [--token-file PATH] [--demo] <command>

commands:
  login -u EMAIL [-p PASSWORD]     open a session (password read from stdin if omitted)
  logout                           forget the session token
  whoami                           show the logged-in account
  candidates list [-status S]      recruitment board
  candidates move ID STATUS        move a card to NOUVEAU, ADMISSIBLE, ENTRETIEN or PLACE
  candidates upload FILE           import a CV
  candidates create -first F -last L [-email E] [-civilite C] [-status S]
  contracts list
  contracts create -candidate ID -company ID -salaire N -start DATE -end DATE [...]
  contracts show ID                dossier, history and calendar
  contracts amend ID [-salaire N] [-npec N] [-hours H] [-session ID] [-start D] [-end D] [-poste P]
  contracts export ID [-dir DIR]
  sessions list
  sessions create -nom N -start DATE -end DATE [-rncp CODE]
  sessions generate ID [-days lundi,mardi]
  companies list
  companies create -name N [-siret S] [-adresse A] [-idcc C]
  attendance mark DOSSIER -date DATE [-status present|justifie|injustifie]
  invoices generate DOSSIER -from DATE -to DATE
  dashboard
  bpf
`)
}
