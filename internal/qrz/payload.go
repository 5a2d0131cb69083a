package qrz

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
)

const databaseElement = "QRZDatabase"

// Payload is the decoded registry reply. The root element name is recorded
// rather than enforced so a foreign document surfaces as a missing record.
type Payload struct {
	XMLName   xml.Name
	Session   *Session    `xml:"Session"`
	Callsigns []RawRecord `xml:"Callsign"`
}

// Session is the registry's status section.
type Session struct {
	Key     string `xml:"Key"`
	Count   string `xml:"Count"`
	SubExp  string `xml:"SubExp"`
	GMTime  string `xml:"GMTime"`
	Message string `xml:"Message"`
	Error   string `xml:"Error"`
}

// Field is one flat element of a Callsign section.
type Field struct {
	Key   string
	Value string
}

// RawRecord keeps the children of a Callsign section in document order.
type RawRecord struct {
	Fields []Field
}

// UnmarshalXML collects every child element as a key/value pair.
func (r *RawRecord) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return fmt.Errorf("read Callsign section: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return fmt.Errorf("read %s: %w", t.Name.Local, err)
			}
			r.Fields = append(r.Fields, Field{Key: t.Name.Local, Value: strings.TrimSpace(value)})
		case xml.EndElement:
			return nil
		}
	}
}

// Get returns the first value stored under key.
func (r RawRecord) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Record returns the single Callsign section under the QRZDatabase root.
// A foreign root, a missing or empty section, or more than one section all
// fail with ErrRecordNotFound.
func (p *Payload) Record() (RawRecord, error) {
	if p == nil || p.XMLName.Local != databaseElement {
		return RawRecord{}, notFound("missing " + databaseElement + " root")
	}
	if len(p.Callsigns) == 0 {
		return RawRecord{}, notFound("missing Callsign section")
	}
	if len(p.Callsigns) > 1 {
		return RawRecord{}, notFound(fmt.Sprintf("ambiguous reply with %d Callsign sections", len(p.Callsigns)))
	}
	record := p.Callsigns[0]
	if len(record.Fields) == 0 {
		return RawRecord{}, notFound("empty Callsign section")
	}
	return record, nil
}

// UpstreamError returns the registry's own error text, if any.
func (p *Payload) UpstreamError() string {
	if p == nil || p.Session == nil {
		return ""
	}
	return strings.TrimSpace(p.Session.Error)
}

func decodePayload(body []byte) (*Payload, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	var payload Payload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &payload, nil
}
