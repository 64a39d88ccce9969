package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
	"github.com/custodia-labs/imgscout/internal/logger"
)

// Pager is the pagination state machine for one search session.
//
// It is Idle when no fetch is in flight and Fetching otherwise. A new query
// always starts a fresh session at page 1, even while Fetching; the response
// to the superseded request is recognised by its RequestID and dropped.
// Scroll-triggered fetches are suppressed while Fetching, so at most one page
// fetch is in flight at a time.
//
// A Pager is owned by the UI goroutine and is not safe for concurrent use.
type Pager struct {
	searcher  driving.Searcher
	lookAhead int

	query   domain.SearchQuery
	state   domain.LoadState
	current domain.RequestID
	items   []domain.ImageRecord
}

// NewPager creates an idle pager. lookAhead is how many unrendered items may
// remain before a scroll requests the next page.
func NewPager(searcher driving.Searcher, lookAhead int) *Pager {
	if lookAhead < 0 {
		lookAhead = domain.DefaultLookAhead
	}
	return &Pager{
		searcher:  searcher,
		lookAhead: lookAhead,
		state:     domain.LoadState{PageCursor: 1},
	}
}

// NewQuery starts a new session for text and fetches its first page.
// Blank text and a repeat of a first page already in flight are ignored.
// Returns true if a fetch was issued.
func (p *Pager) NewQuery(text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	if p.state.IsLoadInProgress && p.state.PageCursor == 1 && text == p.query.Text {
		logger.Debug("pager: %q already in flight", text)
		return false, nil
	}

	p.query = domain.SearchQuery{
		Session: uuid.NewString(),
		Text:    text,
		Cursor:  1,
	}
	p.state = domain.LoadState{PageCursor: 1}
	p.items = nil

	logger.Debug("pager: session %s for %q", p.query.Session, text)
	return p.fetch()
}

// Scroll requests the next page when the user scrolls down to within
// lookAhead items of the end, no fetch is in flight and the session has
// more results. Returns true if a fetch was issued.
func (p *Pager) Scroll(ev domain.ScrollEvent) (bool, error) {
	if ev.DeltaY <= 0 || p.query.Text == "" {
		return false, nil
	}
	if p.state.IsLoadInProgress || p.state.Exhausted {
		return false, nil
	}
	if ev.Remaining() > p.lookAhead {
		return false, nil
	}

	p.state.PageCursor++
	p.query.Cursor = p.state.PageCursor
	issued, err := p.fetch()
	if !issued {
		p.state.PageCursor--
		p.query.Cursor = p.state.PageCursor
	}
	return issued, err
}

// Accept applies a page result. Results for any request other than the one
// in flight are stale and are dropped. Returns true if the result was applied.
func (p *Pager) Accept(res domain.PageResult) bool {
	if !p.isCurrent(res.Request.ID) {
		logger.Debug("pager: dropping stale page for request %d", res.Request.ID)
		return false
	}

	p.items = domain.AppendPage(p.items, res.Images)
	p.state.IsLoadInProgress = false
	if len(res.Images) == 0 {
		p.state.Exhausted = true
	}
	return true
}

// Reject applies a failure for the request in flight. A failed follow-up page
// rolls the cursor back so the next scroll asks for the same page again.
// Returns true if the failure was applied.
func (p *Pager) Reject(f domain.SearchFailure) bool {
	if !p.isCurrent(f.Request.ID) {
		logger.Debug("pager: dropping stale failure for request %d", f.Request.ID)
		return false
	}

	p.state.IsLoadInProgress = false
	if p.state.PageCursor > 1 {
		p.state.PageCursor--
		p.query.Cursor = p.state.PageCursor
	}
	return true
}

// Items returns the accumulated records of the session.
// The returned slice must not be modified.
func (p *Pager) Items() []domain.ImageRecord {
	return p.items
}

// State returns the current load state.
func (p *Pager) State() domain.LoadState {
	return p.state
}

// Query returns the active query.
func (p *Pager) Query() domain.SearchQuery {
	return p.query
}

// Current returns the id of the request in flight, or of the last one issued.
func (p *Pager) Current() domain.RequestID {
	return p.current
}

func (p *Pager) isCurrent(id domain.RequestID) bool {
	return p.state.IsLoadInProgress && id == p.current
}

func (p *Pager) fetch() (bool, error) {
	id, err := p.searcher.Search(p.state.PageCursor, p.query.Text)
	if err != nil {
		return false, err
	}
	p.current = id
	p.state.IsLoadInProgress = true
	return true, nil
}
