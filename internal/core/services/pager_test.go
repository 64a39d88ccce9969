package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/imgscout/internal/core/domain"
)

// fakeSearcher records calls and hands out increasing ids.
type fakeSearcher struct {
	calls []domain.PageRequest
	next  domain.RequestID
	err   error
}

func (f *fakeSearcher) Search(page int, keyword string) (domain.RequestID, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	f.calls = append(f.calls, domain.PageRequest{ID: f.next, Page: page, Keyword: keyword})
	return f.next, nil
}

func records(ids ...string) domain.ResultPage {
	page := make(domain.ResultPage, 0, len(ids))
	for _, id := range ids {
		page = append(page, domain.ImageRecord{ID: id})
	}
	return page
}

func result(id domain.RequestID, page domain.ResultPage) domain.PageResult {
	return domain.PageResult{Request: domain.PageRequest{ID: id}, Images: page}
}

func failure(id domain.RequestID, code domain.ErrorCode) domain.SearchFailure {
	return domain.SearchFailure{Request: domain.PageRequest{ID: id}, Code: code}
}

func TestPager_NewQueryFetchesFirstPage(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	issued, err := p.NewQuery("  cats ")
	require.NoError(t, err)
	assert.True(t, issued)

	require.Len(t, s.calls, 1)
	assert.Equal(t, 1, s.calls[0].Page)
	assert.Equal(t, "cats", s.calls[0].Keyword)
	assert.True(t, p.State().IsLoadInProgress)
	assert.Equal(t, "cats", p.Query().Text)
	assert.NotEmpty(t, p.Query().Session)
}

func TestPager_BlankQueryIgnored(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	issued, err := p.NewQuery("   ")
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Empty(t, s.calls)
}

func TestPager_InFlightDuplicateIgnored(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	_, _ = p.NewQuery("cats")
	issued, err := p.NewQuery("cats")
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Len(t, s.calls, 1)
}

func TestPager_ScrollNearEndFetchesNextPage(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	_, _ = p.NewQuery("cats")
	require.True(t, p.Accept(result(1, records("a", "b", "c", "d", "e", "f", "g", "h"))))
	assert.Equal(t, 1, p.State().PageCursor)

	issued, err := p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 3, Total: 8})
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Equal(t, 2, p.State().PageCursor)
	assert.True(t, p.State().IsLoadInProgress)
	assert.Equal(t, 2, s.calls[1].Page)

	// A second trigger while fetching changes nothing.
	issued, err = p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 6, Total: 8})
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Equal(t, 2, p.State().PageCursor)
	assert.Len(t, s.calls, 2)
}

func TestPager_SameQueryDuringFollowUpPageRestarts(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	_, _ = p.NewQuery("cat")
	require.True(t, p.Accept(result(1, records("a"))))
	issued, err := p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 0, Total: 1})
	require.NoError(t, err)
	require.True(t, issued)
	require.Equal(t, 2, p.State().PageCursor)

	issued, err = p.NewQuery("cat")
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Equal(t, 1, p.State().PageCursor)
	assert.Empty(t, p.Items())
	require.Len(t, s.calls, 3)
	assert.Equal(t, 1, s.calls[2].Page)

	// The page-2 response is now stale.
	assert.False(t, p.Accept(result(2, records("b"))))
	assert.Empty(t, p.Items())
}

func TestPager_ScrollIgnored(t *testing.T) {
	tests := []struct {
		name string
		ev   domain.ScrollEvent
	}{
		{"far from end", domain.ScrollEvent{DeltaY: 1, LastVisible: 1, Total: 20}},
		{"scrolling up", domain.ScrollEvent{DeltaY: -1, LastVisible: 19, Total: 20}},
		{"no movement", domain.ScrollEvent{DeltaY: 0, LastVisible: 19, Total: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{}
			p := NewPager(s, 5)
			_, _ = p.NewQuery("cats")
			p.Accept(result(1, records("a")))

			issued, err := p.Scroll(tt.ev)
			require.NoError(t, err)
			assert.False(t, issued)
			assert.Equal(t, 1, p.State().PageCursor)
		})
	}
}

func TestPager_ScrollWithoutQueryIgnored(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	issued, err := p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 0, Total: 0})
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Empty(t, s.calls)
}

func TestPager_NewQueryResetsWhileFetching(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	_, _ = p.NewQuery("cats")
	p.Accept(result(1, records("a", "b")))
	_, _ = p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 1, Total: 2})
	require.Equal(t, 2, p.State().PageCursor)

	issued, err := p.NewQuery("dogs")
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Equal(t, 1, p.State().PageCursor)
	assert.Empty(t, p.Items())
	assert.Equal(t, domain.RequestID(3), p.Current())
}

func TestPager_StaleResultsDropped(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	_, _ = p.NewQuery("cats")
	_, _ = p.NewQuery("dogs")

	assert.False(t, p.Accept(result(1, records("cat"))))
	assert.False(t, p.Reject(failure(1, domain.CodeServerError)))
	assert.True(t, p.State().IsLoadInProgress)

	assert.True(t, p.Accept(result(2, records("dog"))))
	require.Len(t, p.Items(), 1)
	assert.Equal(t, "dog", p.Items()[0].ID)

	// A duplicate completion after the request settled is also stale.
	assert.False(t, p.Accept(result(2, records("dog"))))
	assert.Len(t, p.Items(), 1)
}

func TestPager_AcceptAppendsPages(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	_, _ = p.NewQuery("cats")
	p.Accept(result(1, records("a", "b")))
	_, _ = p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 1, Total: 2})
	p.Accept(result(2, records("c")))

	ids := make([]string, 0, len(p.Items()))
	for _, rec := range p.Items() {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.False(t, p.State().IsLoadInProgress)
}

func TestPager_EmptyPageExhaustsSession(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	_, _ = p.NewQuery("cats")
	p.Accept(result(1, records("a")))
	_, _ = p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 0, Total: 1})
	p.Accept(result(2, records()))

	assert.True(t, p.State().Exhausted)
	issued, _ := p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 0, Total: 1})
	assert.False(t, issued)
	assert.Len(t, s.calls, 2)
}

func TestPager_RejectRollsBackCursor(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	_, _ = p.NewQuery("cats")
	p.Accept(result(1, records("a")))
	_, _ = p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 0, Total: 1})
	require.Equal(t, 2, p.State().PageCursor)

	assert.True(t, p.Reject(failure(2, domain.CodeServiceUnavailable)))
	assert.Equal(t, 1, p.State().PageCursor)
	assert.False(t, p.State().IsLoadInProgress)

	// The next scroll retries page 2.
	_, _ = p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 0, Total: 1})
	assert.Equal(t, 2, s.calls[2].Page)
}

func TestPager_RejectFirstPageKeepsCursor(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)

	_, _ = p.NewQuery("cats")
	assert.True(t, p.Reject(failure(1, domain.CodeNoConnectivity)))
	assert.Equal(t, 1, p.State().PageCursor)

	// After a failure the same text may be retried.
	issued, _ := p.NewQuery("cats")
	assert.True(t, issued)
}

func TestPager_SearchErrorLeavesStateUnchanged(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, 5)
	_, _ = p.NewQuery("cats")
	p.Accept(result(1, records("a")))

	s.err = errors.New("closed")
	issued, err := p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 0, Total: 1})
	assert.Error(t, err)
	assert.False(t, issued)
	assert.Equal(t, 1, p.State().PageCursor)
	assert.False(t, p.State().IsLoadInProgress)
}

func TestNewPager_NegativeLookAheadUsesDefault(t *testing.T) {
	s := &fakeSearcher{}
	p := NewPager(s, -1)
	_, _ = p.NewQuery("cats")
	p.Accept(result(1, records("a", "b", "c", "d", "e", "f", "g")))

	issued, _ := p.Scroll(domain.ScrollEvent{DeltaY: 1, LastVisible: 2, Total: 7})
	assert.True(t, issued)
}
