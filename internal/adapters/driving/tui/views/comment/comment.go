// Package comment provides the comment editor view for a single image.
package comment

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/imgscout/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/ports/driving"
)

// View edits the comment attached to one image.
//
// Opening the view queues a lookup; the stored text is filled in when the
// lookup event arrives, unless the user has already started typing.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	editor    textarea.Model
	statusbar *status.Bar

	repo         driving.ImageRepository
	imageBaseURL string

	image   domain.ImageRecord
	dirty   bool
	saving  bool
	pending domain.WriteID

	width  int
	height int
}

// NewView creates a comment editor backed by repo.
func NewView(s *styles.Styles, km *keymap.KeyMap, repo driving.ImageRepository, imageBaseURL string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ta := textarea.New()
	ta.Placeholder = "Write a comment..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false

	bar := status.NewBar(s, km)
	bar.SetHints(km.EditorHelp())

	return &View{
		styles:       s,
		keymap:       km,
		editor:       ta,
		statusbar:    bar,
		repo:         repo,
		imageBaseURL: imageBaseURL,
		width:        80,
		height:       24,
	}
}

// Open switches the editor to image and queues a lookup of its comment.
func (v *View) Open(image domain.ImageRecord) tea.Cmd {
	v.image = image
	v.dirty = false
	v.saving = false
	v.pending = 0
	v.editor.Reset()
	v.statusbar.Clear()

	if err := v.repo.LookupComment(image.ID); err != nil {
		v.statusbar.SetErr(err)
	}
	return tea.Batch(v.editor.Focus(), textarea.Blink)
}

// Update handles messages for the editor.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Back):
			v.editor.Blur()
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSearch} }
		case keymap.Matches(msg.String(), v.keymap.Save):
			v.save()
			return v, nil
		}

		before := v.editor.Value()
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		if v.editor.Value() != before {
			v.dirty = true
		}
		return v, cmd

	case messages.CommentLoaded:
		v.handleLoaded(msg.Lookup)
		return v, nil

	case messages.CommentSaved:
		v.handleSaved(msg.Write)
		return v, nil
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

func (v *View) save() {
	if v.saving {
		return
	}
	id, err := v.repo.UpsertComment(v.image.ID, v.editor.Value())
	if err != nil {
		v.statusbar.SetErr(err)
		return
	}
	v.pending = id
	v.saving = true
	v.statusbar.SetState(status.StateLoading)
}

func (v *View) handleLoaded(l domain.CommentLookup) {
	if l.ImageID != v.image.ID {
		return
	}
	if l.Err != nil {
		v.statusbar.SetErr(l.Err)
		return
	}
	if v.dirty {
		return
	}
	v.editor.SetValue(l.Text)
}

func (v *View) handleSaved(w domain.CommentWrite) {
	if !v.saving || w.ID != v.pending {
		return
	}
	v.saving = false
	v.pending = 0
	if w.Err != nil {
		v.statusbar.SetErr(w.Err)
		return
	}
	v.dirty = false
	v.statusbar.SetInfo(fmt.Sprintf("Comment saved (%d row)", w.Rows))
}

// View renders the editor.
func (v *View) View() string {
	title := v.image.Title
	if title == "" {
		title = v.image.ID
	}

	header := v.styles.Title.Render("Comment on " + title)
	link := v.styles.Muted.Render(v.image.CoverURL(v.imageBaseURL))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		link,
		"",
		v.styles.Editor.Render(v.editor.View()),
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.editor.SetWidth(max(width-4, 20))
	v.editor.SetHeight(max(height-9, 3))
	v.statusbar.SetWidth(width)
}

// Image returns the image being edited.
func (v *View) Image() domain.ImageRecord {
	return v.image
}

// Text returns the editor contents.
func (v *View) Text() string {
	return v.editor.Value()
}

// Saving reports whether a write is queued and not yet confirmed.
func (v *View) Saving() bool {
	return v.saving
}

// Status returns the status bar message.
func (v *View) Status() string {
	return v.statusbar.Message()
}
