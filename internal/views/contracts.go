package views

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"cfadesk.org/internal/apiclient"
	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/i18n"
	"cfadesk.org/internal/obs"
)

// ContractAPI is what the contract screens need from the contracts service.
type ContractAPI interface {
	List(ctx context.Context) ([]domain.ContractDossier, error)
	Get(ctx context.Context, id int64) (domain.ContractDetail, error)
	History(ctx context.Context, id int64) ([]domain.ContractVersion, error)
	Create(ctx context.Context, in domain.ContractCreate) (domain.ContractCreated, error)
	Amend(ctx context.Context, id int64, a domain.Amendment) (domain.Message, error)
	Calendar(ctx context.Context, id int64) ([]domain.SessionDay, error)
	Export(ctx context.Context, id int64) (apiclient.Blob, error)
}

type CandidateLister interface {
	List(ctx context.Context) ([]domain.Candidate, error)
}

type CompanyLister interface {
	List(ctx context.Context) ([]domain.Company, error)
}

// ContractList is the dossier list screen with its create form choices.
type ContractList struct {
	contracts  ContractAPI
	candidates CandidateLister
	companies  CompanyLister
}

func NewContractList(contracts ContractAPI, candidates CandidateLister, companies CompanyLister) *ContractList {
	return &ContractList{contracts: contracts, candidates: candidates, companies: companies}
}

// Load is a flat fetch of every dossier.
func (l *ContractList) Load(ctx context.Context) ([]domain.ContractDossier, error) {
	list, err := l.contracts.List(ctx)
	if err != nil {
		logFailure("contract list failed", err, nil)
		return nil, err
	}
	return list, nil
}

// Choices are the selectable parties of the create form.
type Choices struct {
	Candidates []domain.Candidate
	Companies  []domain.Company
}

// LoadChoices fetches candidates and companies in parallel.
func (l *ContractList) LoadChoices(ctx context.Context) (Choices, error) {
	var out Choices
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := l.candidates.List(gctx)
		out.Candidates = list
		return err
	})
	g.Go(func() error {
		list, err := l.companies.List(gctx)
		out.Companies = list
		return err
	})
	if err := g.Wait(); err != nil {
		logFailure("contract choices failed", err, nil)
		return Choices{}, err
	}
	return out, nil
}

// ContractForm submits new dossiers.
type ContractForm struct {
	api    ContractAPI
	notify Notifier
	lang   string
}

func NewContractForm(api ContractAPI, n Notifier, lang string) *ContractForm {
	return &ContractForm{api: api, notify: notifierOrDiscard(n), lang: lang}
}

// Submit creates the dossier with its version 1. Without both parties nothing
// is sent.
func (f *ContractForm) Submit(ctx context.Context, in domain.ContractCreate) (domain.ContractCreated, error) {
	if err := in.Validate(); err != nil {
		f.notify.Notify(Alert, i18n.T(f.lang, "contract_missing_party"))
		return domain.ContractCreated{}, fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
	}
	out, err := f.api.Create(ctx, in)
	if err != nil {
		logFailure("contract create failed", err, map[string]any{"candidat_id": in.CandidateID, "entreprise_id": in.CompanyID})
		f.notify.Notify(Alert, i18n.T(f.lang, "contract_create_failed"))
		return domain.ContractCreated{}, err
	}
	f.notify.Notify(Info, i18n.T(f.lang, "contract_created"))
	return out, nil
}

// DetailSnapshot is everything the detail screen shows.
type DetailSnapshot struct {
	Dossier       domain.ContractDossier
	ActiveVersion *domain.ContractVersion
	History       []domain.ContractVersion
	Calendar      []domain.SessionDay
	// CalendarErr is why the calendar is empty, when its fetch failed.
	CalendarErr error
	// HistoryErr reports an inconsistent chain, e.g. several active versions.
	HistoryErr error
}

func (s DetailSnapshot) clone() DetailSnapshot {
	out := s
	if s.ActiveVersion != nil {
		v := s.ActiveVersion.Clone()
		out.ActiveVersion = &v
	}
	out.History = make([]domain.ContractVersion, len(s.History))
	for i, v := range s.History {
		out.History[i] = v.Clone()
	}
	out.Calendar = append([]domain.SessionDay{}, s.Calendar...)
	return out
}

// ContractDetail is the dossier screen.
type ContractDetail struct {
	api    ContractAPI
	notify Notifier
	lang   string
	id     int64

	mu     sync.RWMutex
	loaded bool
	snap   DetailSnapshot
}

func NewContractDetail(api ContractAPI, n Notifier, lang string, id int64) *ContractDetail {
	return &ContractDetail{api: api, notify: notifierOrDiscard(n), lang: lang, id: id}
}

// Load fetches the dossier, its history and its calendar in parallel. The
// calendar may fail on its own and then shows as empty.
func (v *ContractDetail) Load(ctx context.Context) error {
	var (
		detail  domain.ContractDetail
		history []domain.ContractVersion
		days    []domain.SessionDay
		calErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = v.api.Get(gctx, v.id)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = v.api.History(gctx, v.id)
		return err
	})
	g.Go(func() error {
		days, calErr = v.api.Calendar(gctx, v.id)
		return nil
	})
	if err := g.Wait(); err != nil {
		logFailure("contract detail failed", err, map[string]any{"dossier_id": v.id})
		return err
	}
	if calErr != nil {
		obs.Log("warn", "contract calendar unavailable", map[string]any{"dossier_id": v.id, "error": calErr.Error()})
		days = []domain.SessionDay{}
	}

	snap := DetailSnapshot{
		Dossier:       detail.Dossier,
		ActiveVersion: detail.ActiveVersion,
		History:       history,
		Calendar:      days,
		CalendarErr:   calErr,
	}
	if _, _, err := domain.ActiveVersion(history); err != nil {
		snap.HistoryErr = err
	}
	v.mu.Lock()
	v.snap = snap
	v.loaded = true
	v.mu.Unlock()
	return nil
}

// Snapshot returns a deep copy of the loaded state.
func (v *ContractDetail) Snapshot() DetailSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snap.clone()
}

// OpenAmendment derives a draft from the active version.
func (v *ContractDetail) OpenAmendment() (Draft, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.loaded {
		return Draft{}, ErrNotLoaded
	}
	if v.snap.ActiveVersion == nil {
		return Draft{}, ErrNoActiveVersion
	}
	return newDraft(*v.snap.ActiveVersion), nil
}

// SubmitAmendment sends the draft and, on success, reloads the whole screen.
func (v *ContractDetail) SubmitAmendment(ctx context.Context, d Draft) error {
	if _, err := v.api.Amend(ctx, v.id, d.Payload()); err != nil {
		logFailure("amendment failed", err, map[string]any{"dossier_id": v.id, "changed": d.Changed()})
		v.notify.Notify(Alert, i18n.T(v.lang, "amendment_failed"))
		return err
	}
	v.notify.Notify(Info, i18n.T(v.lang, "amendment_saved"))
	return v.Load(ctx)
}

// BlobExporter downloads a dossier archive.
type BlobExporter interface {
	Export(ctx context.Context, id int64) (apiclient.Blob, error)
}

// Exporter saves dossier archives to disk.
type Exporter struct {
	api    BlobExporter
	notify Notifier
	lang   string
}

func NewExporter(api BlobExporter, n Notifier, lang string) *Exporter {
	return &Exporter{api: api, notify: notifierOrDiscard(n), lang: lang}
}

// ExportFilename is the default archive name of a dossier.
func ExportFilename(id int64) string { return fmt.Sprintf("export_contrat_%d.zip", id) }

// Export downloads the archive and writes it atomically into dir. The name
// sent by the server wins over the default when it is a plain file name.
func (e *Exporter) Export(ctx context.Context, id int64, dir string) (string, error) {
	path, err := e.export(ctx, id, dir)
	if err != nil {
		logFailure("export failed", err, map[string]any{"dossier_id": id})
		e.notify.Notify(Alert, i18n.T(e.lang, "export_failed"))
		return "", err
	}
	return path, nil
}

const exportFileMode os.FileMode = 0o644

func (e *Exporter) export(ctx context.Context, id int64, dir string) (string, error) {
	blob, err := e.api.Export(ctx, id)
	if err != nil {
		return "", err
	}
	name := ExportFilename(id)
	if n := strings.TrimSpace(blob.Filename); n != "" && n == filepath.Base(n) && n != "." && n != ".." {
		name = n
	}
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(blob.Data); err != nil {
		_ = tmp.Close()
		return "", err
	}
	// CreateTemp opens with 0600; exports are shared like any downloaded file.
	if err := tmp.Chmod(exportFileMode); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("save %s: %w", dst, err)
	}
	return dst, nil
}
