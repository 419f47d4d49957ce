package ui

import (
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts typed digits. It backs the
// port, import interval and reminder fields of the settings window.
type NumericalEntry struct {
	widget.Entry
}

// NewNumericalEntry creates an empty NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	e := &NumericalEntry{}
	e.ExtendBaseWidget(e)
	return e
}

// TypedRune drops anything but 0-9. Pasted text bypasses it; the field
// Validator covers that case.
func (e *NumericalEntry) TypedRune(r rune) {
	if r < '0' || r > '9' {
		return
	}
	e.Entry.TypedRune(r)
}

// Keyboard requests the numeric keypad on mobile.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
