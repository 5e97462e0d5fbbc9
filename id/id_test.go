package id_test

import (
	"encoding/json"
	"testing"

	"github.com/kashstash/stash/id"
)

func TestNewAndParse(t *testing.T) {
	epID := id.NewEndpointID()

	if epID.IsNil() {
		t.Fatal("new ID should not be nil")
	}
	if epID.Prefix() != id.PrefixEndpoint {
		t.Fatalf("prefix = %q", epID.Prefix())
	}

	parsed, err := id.Parse(epID.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed.String() != epID.String() {
		t.Fatalf("round trip mismatch: %s vs %s", parsed, epID)
	}
}

func TestParseWithPrefix(t *testing.T) {
	upID := id.NewUploadID()

	if _, err := id.ParseEndpointID(upID.String()); err == nil {
		t.Fatal("expected prefix mismatch error")
	}
	if _, err := id.ParseEndpointID(id.NewEndpointID().String()); err != nil {
		t.Fatal(err)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "not-a-typeid", "ep_"} {
		if _, err := id.Parse(s); err == nil {
			t.Fatalf("expected parse error for %q", s)
		}
	}
}

func TestNilID(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Fatal("Nil should be nil")
	}
	if id.Nil.String() != "" {
		t.Fatalf("Nil string = %q", id.Nil.String())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		ID id.ID `json:"id"`
	}

	epID := id.NewEndpointID()
	raw, err := json.Marshal(wrapper{ID: epID})
	if err != nil {
		t.Fatal(err)
	}

	var got wrapper
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != epID.String() {
		t.Fatalf("round trip mismatch: %s vs %s", got.ID, epID)
	}

	// Empty string unmarshals to Nil.
	var empty wrapper
	if err := json.Unmarshal([]byte(`{"id":""}`), &empty); err != nil {
		t.Fatal(err)
	}
	if !empty.ID.IsNil() {
		t.Fatal("expected Nil for empty id")
	}
}
