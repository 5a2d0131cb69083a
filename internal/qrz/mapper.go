package qrz

// Record is the public callsign record. Optional fields the registry omits,
// or sends empty, are left blank and dropped from JSON.
type Record struct {
	Call         string `json:"call"`
	FName        string `json:"fname,omitempty"`
	Name         string `json:"name,omitempty"`
	Addr1        string `json:"addr1,omitempty"`
	Addr2        string `json:"addr2,omitempty"`
	State        string `json:"state,omitempty"`
	Zip          string `json:"zip,omitempty"`
	Country      string `json:"country,omitempty"`
	LicenseClass string `json:"license_class,omitempty"`
}

// publicNames renames registry keys that differ from the public schema.
// Every other key is used verbatim.
var publicNames = map[string]string{
	"class": "license_class",
}

// MapRecord projects the payload's Callsign section onto Record.
func MapRecord(p *Payload) (Record, error) {
	raw, err := p.Record()
	if err != nil {
		return Record{}, err
	}

	var rec Record
	for _, f := range raw.Fields {
		name := f.Key
		if renamed, ok := publicNames[name]; ok {
			name = renamed
		}
		rec.set(name, f.Value)
	}

	if rec.Call == "" {
		return Record{}, notFound("record has no call")
	}
	return rec, nil
}

// set stores value under the public field name; the first non-empty value wins.
func (r *Record) set(name, value string) {
	if value == "" {
		return
	}
	var dst *string
	switch name {
	case "call":
		dst = &r.Call
	case "fname":
		dst = &r.FName
	case "name":
		dst = &r.Name
	case "addr1":
		dst = &r.Addr1
	case "addr2":
		dst = &r.Addr2
	case "state":
		dst = &r.State
	case "zip":
		dst = &r.Zip
	case "country":
		dst = &r.Country
	case "license_class":
		dst = &r.LicenseClass
	default:
		return
	}
	if *dst == "" {
		*dst = value
	}
}
