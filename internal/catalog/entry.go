// Package catalog provides the civic-service entry model and its loader.
package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
)

// LinkType classifies an entry link.
type LinkType string

const (
	LinkPayment LinkType = "payment"
	LinkForm    LinkType = "form"
	LinkAction  LinkType = "action"
	LinkMap     LinkType = "map"
	LinkInfo    LinkType = "info"
)

// primaryLinkOrder is the preference order used by PrimaryLink.
var primaryLinkOrder = []LinkType{LinkPayment, LinkForm, LinkAction, LinkMap, LinkInfo}

// Entry is one catalog record. Entries are immutable once loaded.
type Entry struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Org      string   `json:"org"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Contact  Contact  `json:"contact"`
	Links    []Link   `json:"links"`
	Priority Priority `json:"priority,omitzero"`
}

// Contact holds the optional contact block.
type Contact struct {
	Phone   string `json:"phone_primary,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Hours   string `json:"hours,omitempty"`
}

// Link is a typed action link.
type Link struct {
	Type  LinkType `json:"type"`
	Label string   `json:"label"`
	URL   string   `json:"url"`
}

// Priority is an optional ranking tiebreaker. Non-numeric JSON values
// decode as absent rather than failing the whole catalog.
type Priority struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Priority) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Priority{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*p = Priority{}
		return nil
	}
	*p = Priority{Value: v, Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Priority) MarshalJSON() ([]byte, error) {
	if !p.Set {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// IsZero lets omitzero drop an unset priority.
func (p Priority) IsZero() bool {
	return !p.Set
}

// PriorityOr returns the entry priority, or def when none was given.
func (e *Entry) PriorityOr(def float64) float64 {
	if e.Priority.Set {
		return e.Priority.Value
	}
	return def
}

// PrimaryLink returns the preferred action link: payment, then form,
// action, map and info. Links without a type count as info.
func (e *Entry) PrimaryLink() *Link {
	for _, want := range primaryLinkOrder {
		for i := range e.Links {
			typ := e.Links[i].Type
			if typ == "" {
				typ = LinkInfo
			}
			if typ == want {
				return &e.Links[i]
			}
		}
	}
	return nil
}

// PhoneURI returns a tel: URI for the primary phone, or "" if none.
func (e *Entry) PhoneURI() string {
	if e.Contact.Phone == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range e.Contact.Phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return "tel:" + b.String()
}

// flexID accepts both string and numeric JSON identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// rawEntry mirrors the wire record before normalization.
type rawEntry struct {
	ID       flexID   `json:"id"`
	Name     *string  `json:"name"`
	Org      *string  `json:"org"`
	Summary  *string  `json:"summary"`
	Tags     []string `json:"tags"`
	Contact  *Contact `json:"contact"`
	Links    []Link   `json:"links"`
	Priority Priority `json:"priority"`
}

func (r rawEntry) normalize() Entry {
	e := Entry{
		ID:       string(r.ID),
		Name:     deref(r.Name),
		Org:      deref(r.Org),
		Summary:  deref(r.Summary),
		Tags:     make([]string, 0, len(r.Tags)),
		Links:    r.Links,
		Priority: r.Priority,
	}
	for _, t := range r.Tags {
		if t == "" {
			continue
		}
		e.Tags = append(e.Tags, strings.ToLower(t))
	}
	if r.Contact != nil {
		e.Contact = *r.Contact
	}
	if e.Links == nil {
		e.Links = []Link{}
	}
	return e
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
