package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/entry"
)

// Exporter renders the address book as subscribable feeds.
type Exporter struct {
	Clock Clock // Interface for time mocking.

	// ReminderTrigger is an ISO8601 duration (e.g. "-PT1H") added as an alarm
	// to every event. Empty disables alarms.
	ReminderTrigger string
}

// Calendar encodes the active events as an iCalendar feed. It also returns
// how many of them fall on the current local day.
func (x *Exporter) Calendar(events []*entry.Event) ([]byte, int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := x.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := 0
	for _, e := range events {
		if e.IsArchived() {
			continue
		}
		if e.IsOn(now) {
			today++
		}
		event := x.newEvent(e)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgExportSuccess,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRoute, config.RouteEvents,
		config.LogKeyEvents, len(cal.Children),
		config.LogKeySizeBytes, buf.Len())
	return buf.Bytes(), today, nil
}

func (x *Exporter) newEvent(e *entry.Event) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, eventUID(e))

	summary := e.Name
	if e.CompanyName != "" {
		summary = fmt.Sprintf(config.FormatEventSummary, e.Name, e.CompanyName)
	}
	event.Props.SetText(config.PropSummary, summary)
	if e.Description != "" {
		event.Props.SetText(config.PropDescription, e.Description)
	}

	dtStartProp := ical.NewProp(config.PropDTStart)
	if isMidnight(e.Date) {
		dtStartProp.SetDate(e.Date)
	} else {
		dtStartProp.SetDateTime(e.Date.UTC())
	}
	event.Props.Set(dtStartProp)

	if len(e.Tags) > 0 {
		// Set manually so the list separator is not escaped.
		categoriesProp := ical.NewProp(config.PropCategories)
		categoriesProp.Value = strings.Join(e.Tags, ",")
		event.Props.Set(categoriesProp)
	}

	if x.ReminderTrigger != "" {
		addAlarm(event, x.ReminderTrigger, summary)
	}
	return event
}

// eventUID is derived from the event identity so clients keep their state
// across refreshes.
func eventUID(e *entry.Event) string {
	input := fmt.Sprintf(config.FormatHashInput, entry.NameKey(e.Name), e.Date.Format(time.RFC3339), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// Contacts encodes the active persons as a vCard 4.0 stream.
func (x *Exporter) Contacts(persons []*entry.Person) ([]byte, error) {
	var buf bytes.Buffer
	enc := vcard.NewEncoder(&buf)

	count := 0
	for _, p := range persons {
		if p.IsArchived() {
			continue
		}
		if err := enc.Encode(cardFromPerson(p)); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
		count++
	}

	slog.Debug(config.MsgExportSuccess,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRoute, config.RouteContacts,
		config.LogKeyPersons, count,
		config.LogKeySizeBytes, buf.Len())
	return buf.Bytes(), nil
}

func cardFromPerson(p *entry.Person) vcard.Card {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, config.VCardVersion)
	card.SetValue(vcard.FieldFormattedName, p.Name)
	if p.Phone != "" {
		card.SetValue(vcard.FieldTelephone, p.Phone)
	}
	if p.Email != "" {
		card.SetValue(vcard.FieldEmail, p.Email)
	}
	if p.Address != "" {
		card.AddAddress(&vcard.Address{StreetAddress: p.Address})
	}
	if p.CompanyName != "" {
		card.SetValue(vcard.FieldOrganization, p.CompanyName)
	}
	if len(p.Tags) > 0 {
		card.SetValue(vcard.FieldCategories, strings.Join(p.Tags, ","))
	}
	return card
}
