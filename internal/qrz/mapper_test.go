package qrz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, body string) *Payload {
	t.Helper()
	payload, err := decodePayload([]byte(body))
	require.NoError(t, err)
	return payload
}

func TestMapRecordRenamesClass(t *testing.T) {
	t.Parallel()

	payload := mustDecode(t, `<QRZDatabase><Callsign><call>W1AW</call><class>E</class></Callsign></QRZDatabase>`)

	rec, err := MapRecord(payload)
	require.NoError(t, err)
	require.Equal(t, Record{Call: "W1AW", LicenseClass: "E"}, rec)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.JSONEq(t, `{"call":"W1AW","license_class":"E"}`, string(data))
}

func TestMapRecordAllFields(t *testing.T) {
	t.Parallel()

	rec, err := MapRecord(mustDecode(t, sampleReply))
	require.NoError(t, err)
	require.Equal(t, Record{
		Call:         "W1AW",
		FName:        "ARRL HQ OPERATORS",
		Name:         "CLUB",
		Addr1:        "225 MAIN ST",
		Addr2:        "NEWINGTON",
		State:        "CT",
		Zip:          "06111",
		Country:      "United States",
		LicenseClass: "C",
	}, rec)
}

func TestMapRecordOnlyCall(t *testing.T) {
	t.Parallel()

	rec, err := MapRecord(mustDecode(t, `<QRZDatabase><Callsign><call>K1ABC</call></Callsign></QRZDatabase>`))
	require.NoError(t, err)
	require.Equal(t, Record{Call: "K1ABC"}, rec)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.JSONEq(t, `{"call":"K1ABC"}`, string(data))
}

func TestMapRecordEmptyOptionalFieldsAreAbsent(t *testing.T) {
	t.Parallel()

	rec, err := MapRecord(mustDecode(t,
		`<QRZDatabase><Callsign><call>K1ABC</call><addr2></addr2><class> </class></Callsign></QRZDatabase>`))
	require.NoError(t, err)
	require.Equal(t, Record{Call: "K1ABC"}, rec)
}

func TestMapRecordIgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	rec, err := MapRecord(mustDecode(t,
		`<QRZDatabase><Callsign><call>K1ABC</call><grid>FN31pr</grid><email>x@example.com</email></Callsign></QRZDatabase>`))
	require.NoError(t, err)
	require.Equal(t, Record{Call: "K1ABC"}, rec)
}

func TestMapRecordFirstValueWins(t *testing.T) {
	t.Parallel()

	rec, err := MapRecord(mustDecode(t,
		`<QRZDatabase><Callsign><call>K1ABC</call><name>FIRST</name><name>SECOND</name></Callsign></QRZDatabase>`))
	require.NoError(t, err)
	require.Equal(t, "FIRST", rec.Name)
}

func TestMapRecordNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing record section", `<QRZDatabase><Session><Error>Not found</Error></Session></QRZDatabase>`},
		{"missing call", `<QRZDatabase><Callsign><fname>JOHN</fname><class>G</class></Callsign></QRZDatabase>`},
		{"blank call", `<QRZDatabase><Callsign><call>  </call><class>G</class></Callsign></QRZDatabase>`},
		{"empty record", `<QRZDatabase><Callsign/></QRZDatabase>`},
		{"wrong root", `<xmldata><Callsign><call>W1AW</call></Callsign></xmldata>`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := MapRecord(mustDecode(t, tt.body))
			require.ErrorIs(t, err, ErrRecordNotFound)
			require.NotErrorIs(t, err, ErrUpstreamUnavailable)
			require.Equal(t, OutcomeNotFound, Outcome(err))
		})
	}
}
