// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/imgscout/internal/core/domain"
)

// LoadingRow is rendered after the last item while a page is in flight.
const LoadingRow = "Loading more…"

// ImageList displays image records in a navigable, windowed list.
type ImageList struct {
	items    []domain.ImageRecord
	selected int
	offset   int
	loading  bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewImageList creates an empty image list.
func NewImageList(s *styles.Styles) *ImageList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ImageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders the visible window of the list.
func (l *ImageList) View() string {
	if len(l.items) == 0 {
		if l.loading {
			return l.styles.Loading.Render("Searching…")
		}
		return l.styles.Muted.Render("No images")
	}

	lines := make([]string, 0, l.rows()+3)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Images (%d)", len(l.items))), "")

	end := l.LastVisible() + 1
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderItem(i))
	}
	if l.loading && end == len(l.items) {
		lines = append(lines, l.styles.Loading.Render("  "+LoadingRow))
	}

	return strings.Join(lines, "\n")
}

func (l *ImageList) renderItem(index int) string {
	item := l.items[index]

	title := item.Title
	if title == "" {
		title = "(untitled)"
	}
	maxLen := max(l.width-16, 10)
	if len(title) > maxLen {
		title = title[:maxLen-3] + "..."
	}

	if index == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("> %-*s %s", maxLen, title, item.ID))
	}
	line := l.styles.Normal.Render(fmt.Sprintf("  %-*s ", maxLen, title)) + l.styles.Muted.Render(item.ID)
	if item.IsAlbum {
		line += l.styles.Album.Render(" album")
	}
	return line
}

// rows is the number of items that fit in the window.
func (l *ImageList) rows() int {
	return max(l.height-3, 1)
}

// SetItems replaces the items, keeping the selection where possible.
func (l *ImageList) SetItems(items []domain.ImageRecord) {
	l.items = items
	if l.selected >= len(items) {
		l.selected = max(len(items)-1, 0)
	}
	l.clampOffset()
}

// Items returns the current items.
func (l *ImageList) Items() []domain.ImageRecord {
	return l.items
}

// SetLoading toggles the trailing loading row.
func (l *ImageList) SetLoading(loading bool) {
	l.loading = loading
}

// Loading reports whether the loading row is shown.
func (l *ImageList) Loading() bool {
	return l.loading
}

// Selected returns the index of the selected item.
func (l *ImageList) Selected() int {
	return l.selected
}

// SelectedItem returns the selected record, or nil if the list is empty.
func (l *ImageList) SelectedItem() *domain.ImageRecord {
	if l.selected < 0 || l.selected >= len(l.items) {
		return nil
	}
	return &l.items[l.selected]
}

// LastVisible returns the index of the last item inside the window.
func (l *ImageList) LastVisible() int {
	return min(l.offset+l.rows(), len(l.items)) - 1
}

// MoveUp moves selection up.
func (l *ImageList) MoveUp() {
	if l.selected > 0 {
		l.selected--
		l.clampOffset()
	}
}

// MoveDown moves selection down.
func (l *ImageList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
		l.clampOffset()
	}
}

// ScrollEvent describes the window after a move by delta.
func (l *ImageList) ScrollEvent(delta int) domain.ScrollEvent {
	return domain.ScrollEvent{
		DeltaY:      delta,
		LastVisible: l.LastVisible(),
		Total:       len(l.items),
	}
}

func (l *ImageList) clampOffset() {
	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.selected >= l.offset+l.rows() {
		l.offset = l.selected - l.rows() + 1
	}
	l.offset = max(l.offset, 0)
}

// Reset clears items and selection.
func (l *ImageList) Reset() {
	l.items = nil
	l.selected = 0
	l.offset = 0
	l.loading = false
}

// SetDimensions sets the component dimensions.
func (l *ImageList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
	l.clampOffset()
}

// Count returns the number of items.
func (l *ImageList) Count() int {
	return len(l.items)
}
