package console

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formField seeds one labeled input of a form.
type formField struct {
	label       string
	placeholder string
	value       string
}

// form is a vertical stack of labeled text inputs with tab-cycled focus.
// The owning screen handles enter (submit) and esc (cancel) before
// delegating keys here; the form owns focus movement and typing.
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	errMsg string
}

func newForm(title string, fields ...formField) *form {
	f := &form{title: title}
	for _, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.placeholder
		in.CharLimit = 128
		in.SetValue(fd.value)
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, in)
	}
	return f
}

// open resets focus to the first input and clears any stale error.
func (f *form) open() tea.Cmd {
	f.errMsg = ""
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.focus = 0
	return f.inputs[0].Focus()
}

func (f *form) blur() {
	f.inputs[f.focus].Blur()
}

// update moves focus on tab/shift+tab/up/down and feeds everything else to
// the focused input.
func (f *form) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return f.moveFocus(1)
	case "shift+tab", "up":
		return f.moveFocus(-1)
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) moveFocus(delta int) tea.Cmd {
	n := len(f.inputs)
	f.inputs[f.focus].Blur()
	f.focus = ((f.focus+delta)%n + n) % n
	return f.inputs[f.focus].Focus()
}

// value returns the trimmed text of the i-th field.
func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) setError(msg string) {
	f.errMsg = msg
}

func (f *form) view() string {
	parts := []string{notifTitle.Render(f.title)}
	for i := range f.inputs {
		parts = append(parts, f.labels[i]+": "+f.inputs[i].View())
	}
	if f.errMsg != "" {
		parts = append(parts, errStyle.Render(f.errMsg))
	}
	parts = append(parts, notifBody.Render("enter save · esc cancel · tab next field"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// firstViolation flattens a Validate() result into one stable message for
// display, picking the smallest field name so repeated submits don't shuffle
// the text.
func firstViolation(errs map[string]string) string {
	if len(errs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0] + " " + errs[keys[0]]
}
