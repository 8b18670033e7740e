// Package confirm provides the yes/no prompt that guards destructive console
// actions. A dialog either owns its open state (uncontrolled) or defers to a
// caller-supplied flag (controlled); the variant is fixed at construction and
// never branches per call.
package confirm

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dialog is one confirmation prompt.
type Dialog struct {
	title   string
	message string

	onConfirm func()
	onCancel  func()

	controlled bool
	isOpen     func() bool
	setOpen    func(bool)

	internalOpen bool
}

// Option configures a Dialog.
type Option func(*Dialog)

// OnConfirm sets the action to run when the user accepts.
func OnConfirm(fn func()) Option {
	return func(d *Dialog) { d.onConfirm = fn }
}

// OnCancel sets an action to run when the user declines.
func OnCancel(fn func()) Option {
	return func(d *Dialog) { d.onCancel = fn }
}

// NewUncontrolled creates a dialog that owns its open/closed state.
func NewUncontrolled(title, message string, opts ...Option) *Dialog {
	d := &Dialog{title: title, message: message}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewControlled creates a dialog whose open/closed state lives with the
// caller: reads go through isOpen and every transition is reported through
// setOpen rather than stored internally.
func NewControlled(title, message string, isOpen func() bool, setOpen func(bool), opts ...Option) *Dialog {
	d := &Dialog{
		title:      title,
		message:    message,
		controlled: true,
		isOpen:     isOpen,
		setOpen:    setOpen,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsOpen reports whether the prompt is showing.
func (d *Dialog) IsOpen() bool {
	if d.controlled {
		return d.isOpen()
	}
	return d.internalOpen
}

// Open shows the prompt.
func (d *Dialog) Open() {
	d.transition(true)
}

// Confirm runs the confirm action and closes the prompt.
func (d *Dialog) Confirm() {
	if d.onConfirm != nil {
		d.onConfirm()
	}
	d.transition(false)
}

// Cancel closes the prompt without running the confirm action.
func (d *Dialog) Cancel() {
	if d.onCancel != nil {
		d.onCancel()
	}
	d.transition(false)
}

func (d *Dialog) transition(open bool) {
	if d.controlled {
		d.setOpen(open)
		return
	}
	d.internalOpen = open
}

var (
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	titleStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

// View renders the prompt, or an empty string when closed.
func (d *Dialog) View() string {
	if !d.IsOpen() {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.title))
	b.WriteByte('\n')
	b.WriteString(d.message)
	b.WriteByte('\n')
	b.WriteString(hintStyle.Render("y: confirm  n/esc: cancel"))
	return boxStyle.Render(b.String())
}
