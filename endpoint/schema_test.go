package endpoint_test

import (
	"testing"

	"github.com/kashstash/stash/endpoint"
)

func TestDecodeDocument(t *testing.T) {
	raw := []byte(`{
		"endpoints": [{
			"id": "ep_01h455vb4pex5vsknk084sn02q",
			"name": "home",
			"probeKey": "secret",
			"nodeName": "acme",
			"probeId": "42"
		}],
		"lastUsedEndpoint": "ep_01h455vb4pex5vsknk084sn02q"
	}`)

	doc, err := endpoint.DecodeDocument(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Endpoints) != 1 {
		t.Fatalf("got %d endpoints", len(doc.Endpoints))
	}
	if doc.Endpoints[0].Name != "home" {
		t.Fatalf("name = %q", doc.Endpoints[0].Name)
	}
	if doc.LastUsed != "ep_01h455vb4pex5vsknk084sn02q" {
		t.Fatalf("lastUsed = %q", doc.LastUsed)
	}
}

func TestDecodeDocumentRejectsBrokenShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{"endpoints": [`},
		{"wrong root type", `[]`},
		{"missing endpoints", `{"lastUsedEndpoint":"x"}`},
		{"endpoint missing credentials", `{"endpoints":[{"id":"ep_x","name":"a"}]}`},
		{"endpoints wrong type", `{"endpoints":{"a":1}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := endpoint.DecodeDocument([]byte(tc.raw)); err == nil {
				t.Fatalf("expected decode error for %s", tc.raw)
			}
		})
	}
}
