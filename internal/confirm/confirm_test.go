package confirm

import (
	"strings"
	"testing"
)

func TestUncontrolledOwnState(t *testing.T) {
	confirmed := 0
	d := NewUncontrolled("Delete beer", "Really delete Mango Bobs?",
		OnConfirm(func() { confirmed++ }))

	if d.IsOpen() {
		t.Fatal("dialog open before Open()")
	}

	d.Open()
	if !d.IsOpen() {
		t.Fatal("dialog closed after Open()")
	}

	d.Confirm()
	if confirmed != 1 {
		t.Errorf("confirmed = %d, want 1", confirmed)
	}
	if d.IsOpen() {
		t.Error("dialog open after Confirm()")
	}
}

func TestUncontrolledCancelSkipsAction(t *testing.T) {
	confirmed := false
	cancelled := false
	d := NewUncontrolled("Delete", "sure?",
		OnConfirm(func() { confirmed = true }),
		OnCancel(func() { cancelled = true }))

	d.Open()
	d.Cancel()
	if confirmed {
		t.Error("confirm action ran on Cancel")
	}
	if !cancelled {
		t.Error("cancel action did not run")
	}
	if d.IsOpen() {
		t.Error("dialog open after Cancel()")
	}
}

func TestControlledDefersToExternalFlag(t *testing.T) {
	open := false
	var transitions []bool
	d := NewControlled("Delete", "sure?",
		func() bool { return open },
		func(v bool) {
			open = v
			transitions = append(transitions, v)
		})

	if d.IsOpen() {
		t.Fatal("controlled dialog open while external flag is false")
	}

	// External state change is visible without any dialog call.
	open = true
	if !d.IsOpen() {
		t.Fatal("controlled dialog ignores external flag")
	}

	d.Confirm()
	if open {
		t.Error("Confirm did not report closed state through setOpen")
	}
	if len(transitions) != 1 || transitions[0] != false {
		t.Errorf("transitions = %v, want [false]", transitions)
	}

	d.Open()
	if !open || len(transitions) != 2 {
		t.Errorf("Open did not report through setOpen, transitions = %v", transitions)
	}
}

func TestViewRendersOnlyWhenOpen(t *testing.T) {
	d := NewUncontrolled("Delete beer", "Really delete Galaxy Cat?")
	if d.View() != "" {
		t.Error("View non-empty while closed")
	}

	d.Open()
	view := d.View()
	if !strings.Contains(view, "Delete beer") {
		t.Errorf("View missing title:\n%s", view)
	}
	if !strings.Contains(view, "Galaxy Cat") {
		t.Errorf("View missing message:\n%s", view)
	}
}
