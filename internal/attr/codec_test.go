package attr

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMapCodecPreservesTypes(t *testing.T) {
	in := Map{
		"who":    "ACME",
		"amount": int64(-12345),
		"date":   time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Map
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round-trip mismatch (-in +out):\n%s", diff)
	}
	// The directives must still see typed values after a round-trip.
	if got := Format("%{amount%A} %{date%date}", out); got != "-123.45 07/03/2024" {
		t.Errorf("Format after round-trip = %q", got)
	}
}

func TestMapCodecRejectsUnknownType(t *testing.T) {
	var m Map
	err := json.Unmarshal([]byte(`{"x":{"type":"blob","value":"y"}}`), &m)
	if err == nil {
		t.Fatal("expected error for unknown type tag")
	}
}
