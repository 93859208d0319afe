// Command smoke-contracts checks the contract versioning workflow against a
// running backend: create a dossier, amend it, and verify the version chain.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"cfadesk.org/internal/apiclient"
	"cfadesk.org/internal/auth"
	"cfadesk.org/internal/config"
	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/ids"
	"cfadesk.org/internal/services/companies"
	"cfadesk.org/internal/services/contracts"
	"cfadesk.org/internal/services/identity"
	"cfadesk.org/internal/services/recruitment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	user, pass := os.Getenv("CFADESK_SMOKE_USER"), os.Getenv("CFADESK_SMOKE_PASSWORD")
	if user == "" || pass == "" {
		log.Fatal("CFADESK_SMOKE_USER and CFADESK_SMOKE_PASSWORD are required")
	}

	store := auth.NewMemoryStore("")
	client, err := apiclient.New(apiclient.Options{BaseURL: cfg.API.URL, Timeout: cfg.API.Timeout}, store)
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	session := auth.NewSession(store, identity.New(client))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := session.Login(ctx, user, pass); err != nil {
		log.Fatalf("login as %s: %v", user, err)
	}

	tag := ids.New()
	cand, err := recruitment.New(client).Create(ctx, domain.CandidateCreate{
		FirstName: "Smoke",
		LastName:  tag,
		Statut:    domain.StatusPlace,
	})
	if err != nil {
		log.Fatalf("create candidate: %v", err)
	}
	comp, err := companies.New(client).Create(ctx, domain.CompanyCreate{RaisonSociale: "Smoke " + tag})
	if err != nil {
		log.Fatalf("create company: %v", err)
	}

	svc := contracts.New(client)
	created, err := svc.Create(ctx, domain.ContractCreate{
		CandidateID:   cand.ID,
		CompanyID:     comp.ID,
		Salaire:       decimal.NewFromInt(1500),
		DateDebut:     "2025-09-01",
		DateFin:       "2026-08-31",
		IntitulePoste: "Apprenti",
	})
	if err != nil {
		log.Fatalf("create contract: %v", err)
	}

	detail, err := svc.Get(ctx, created.DossierID)
	if err != nil {
		log.Fatalf("get contract %d: %v", created.DossierID, err)
	}
	if detail.ActiveVersion == nil {
		log.Fatalf("contract %d has no active version", created.DossierID)
	}
	amend := domain.AmendmentFrom(*detail.ActiveVersion)
	raised := decimal.NewFromInt(1700)
	amend.Salaire = &raised
	if _, err := svc.Amend(ctx, created.DossierID, amend); err != nil {
		log.Fatalf("amend contract %d: %v", created.DossierID, err)
	}

	history, err := svc.History(ctx, created.DossierID)
	if err != nil {
		log.Fatalf("history %d: %v", created.DossierID, err)
	}
	active, ok, err := domain.ActiveVersion(history)
	if err != nil || !ok {
		log.Fatalf("active version of %d: ok=%v err=%v", created.DossierID, ok, err)
	}
	if len(history) != 2 || active.VersionNumber != 2 || !active.Salaire.Equal(raised) {
		log.Fatalf("unexpected history: %d versions, active V%d salaire %s", len(history), active.VersionNumber, active.Salaire)
	}
	if history[0].IsActive || !history[0].Salaire.Equal(decimal.NewFromInt(1500)) {
		log.Fatalf("version 1 was altered: %+v", history[0])
	}

	fmt.Printf("contract smoke test passed: dossier=%d versions=%d\n", created.DossierID, len(history))
}
