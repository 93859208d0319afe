package views

import (
	"context"
	"fmt"
	"io"
	"sync"

	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/i18n"
)

// CandidateAPI is what the board needs from the recruitment service.
type CandidateAPI interface {
	List(ctx context.Context) ([]domain.Candidate, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Candidate, error)
	Upload(ctx context.Context, filename string, r io.Reader) (domain.UploadResult, error)
}

// Lane is one board column with its cards in list order.
type Lane struct {
	Column     domain.Column
	Title      string
	Candidates []domain.Candidate
}

// Board is the recruitment kanban. The visible list is an immutable slice
// that is replaced, never edited in place: a move publishes a projection and
// keeps the pre-move slice so a failed update can swap it back whole.
type Board struct {
	api    CandidateAPI
	notify Notifier
	lang   string

	mu      sync.RWMutex
	visible []domain.Candidate
	loading bool
}

func NewBoard(api CandidateAPI, n Notifier, lang string) *Board {
	return &Board{api: api, notify: notifierOrDiscard(n), lang: lang}
}

// Load replaces the list with the server's.
func (b *Board) Load(ctx context.Context) error {
	list, err := b.api.List(ctx)
	if err != nil {
		logFailure("board load failed", err, nil)
		return err
	}
	b.mu.Lock()
	b.visible = append([]domain.Candidate(nil), list...)
	b.mu.Unlock()
	return nil
}

// Candidates returns a copy of the visible list, projection included.
func (b *Board) Candidates() []domain.Candidate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Candidate(nil), b.visible...)
}

// Loading is true while an upload is in flight.
func (b *Board) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// Lanes partitions the visible list into the four board lanes.
func (b *Board) Lanes() []Lane {
	list := b.Candidates()
	lanes := make([]Lane, len(domain.BoardColumns))
	for i, col := range domain.BoardColumns {
		lanes[i] = Lane{Column: col, Title: col.Title(), Candidates: []domain.Candidate{}}
	}
	for _, c := range list {
		col, err := domain.ColumnFor(c.Statut)
		if err != nil || !col.OnBoard() {
			continue
		}
		lanes[col].Candidates = append(lanes[col].Candidates, c)
	}
	return lanes
}

// Rejected returns the REJETE candidates kept off the board.
func (b *Board) Rejected() []domain.Candidate { return b.inColumn(domain.ColumnRejected) }

// Unclassified returns the candidates the backend sent without a known status.
func (b *Board) Unclassified() []domain.Candidate { return b.inColumn(domain.ColumnUnclassified) }

func (b *Board) inColumn(want domain.Column) []domain.Candidate {
	out := []domain.Candidate{}
	for _, c := range b.Candidates() {
		if col, err := domain.ColumnFor(c.Statut); err == nil && col == want {
			out = append(out, c)
		}
	}
	return out
}

// Move drops a card in a lane. The new status is visible immediately; if the
// server rejects it the whole pre-move list is restored and the operator is
// alerted. Dropping a card in its own lane sends nothing.
func (b *Board) Move(ctx context.Context, id int64, target domain.Column) error {
	if !target.OnBoard() {
		return fmt.Errorf("%w: column %d is not a board lane", ErrPreconditionFailed, int(target))
	}
	status := target.Status()

	b.mu.Lock()
	idx := -1
	for i, c := range b.visible {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrCandidateNotFound, id)
	}
	if b.visible[idx].Statut == status {
		b.mu.Unlock()
		return nil
	}
	before := b.visible
	projected := append([]domain.Candidate(nil), before...)
	projected[idx].Statut = status
	b.visible = projected
	b.mu.Unlock()

	if _, err := b.api.UpdateStatus(ctx, id, status); err != nil {
		b.mu.Lock()
		b.visible = before
		b.mu.Unlock()
		logFailure("status update failed", err, map[string]any{"candidate_id": id, "status": string(status)})
		b.notify.Notify(Alert, i18n.T(b.lang, "status_update_failed"))
		return err
	}
	return nil
}

// Upload sends a CV and prepends the created candidate. The list is left
// untouched on failure.
func (b *Board) Upload(ctx context.Context, filename string, r io.Reader) (domain.Candidate, error) {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.loading = false
		b.mu.Unlock()
	}()

	res, err := b.api.Upload(ctx, filename, r)
	if err != nil {
		logFailure("cv upload failed", err, map[string]any{"filename": filename})
		b.notify.Notify(Alert, i18n.T(b.lang, "upload_failed"))
		return domain.Candidate{}, err
	}
	c := res.Candidate(filename)
	b.mu.Lock()
	next := make([]domain.Candidate, 0, len(b.visible)+1)
	next = append(next, c)
	next = append(next, b.visible...)
	b.visible = next
	b.mu.Unlock()
	return c, nil
}
