// Package stash is the client core for sending content — notes, images,
// screenshots, shared attachments — to a configured remote endpoint.
//
// Stash is a library, not a service. UIs (a tray app, a share extension, the
// bundled CLI) sit on top of it: they collect content and tags from the user,
// and stash resolves the current endpoint, builds the wire payload, and
// dispatches it.
//
// Key pieces:
//   - Named endpoints with probe credentials, persisted as one JSON document
//     (file, memory and Redis store backends)
//   - A registry with write-through CRUD and a stable current-endpoint rule
//   - Tag merging that stamps every upload with its originating device
//   - Concurrent share fan-out with a single aggregate outcome
//   - Read-back of ingested digests through optional read probes
//
// Quick start:
//
//	st, err := stash.New(
//	    stash.WithStore(fileStore),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	st.Endpoints().Add(ctx, endpoint.Input{
//	    Name:     "home",
//	    NodeName: "acme",
//	    ProbeID:  "42",
//	    ProbeKey: "secret",
//	})
//
//	res, _ := st.UploadNote(ctx, "meeting notes", "work")
//	if !res.OK() {
//	    log.Println("upload failed:", res.Error)
//	}
package stash
