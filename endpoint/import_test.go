package endpoint_test

import (
	"testing"

	"github.com/kashstash/stash/endpoint"
)

func TestImportMobile(t *testing.T) {
	raw := []byte(`{
		"name": "My Phone",
		"device": "pixel",
		"probeKey": "secret",
		"nodeName": "acme",
		"probeId": "42"
	}`)

	in, err := endpoint.ImportMobile(raw)
	if err != nil {
		t.Fatal(err)
	}
	if in.Name != "My Phone" || in.Device != "pixel" {
		t.Fatalf("got %+v", in)
	}
	if in.NodeName != "acme" || in.ProbeID != "42" || in.ProbeKey != "secret" {
		t.Fatalf("got %+v", in)
	}
}

func TestImportMobileDefaults(t *testing.T) {
	raw := []byte(`{"probeKey":"secret","nodeName":"acme","probeId":"42"}`)

	in, err := endpoint.ImportMobile(raw)
	if err != nil {
		t.Fatal(err)
	}
	if in.Name != "Imported from Mobile" {
		t.Fatalf("name = %q", in.Name)
	}
	if in.Device != "mobile" {
		t.Fatalf("device = %q", in.Device)
	}
}

func TestImportMobileRejectsIncomplete(t *testing.T) {
	if _, err := endpoint.ImportMobile([]byte(`{"name":"x"}`)); err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if _, err := endpoint.ImportMobile([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
