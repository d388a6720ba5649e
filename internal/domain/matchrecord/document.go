package matchrecord

import (
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// Document is the persisted form of a fixture record: a free-shape JSON
// object keyed by the provider's top-level field names. Stores merge
// documents rather than replacing them, so a partial document (say only
// statistics) can be written without clobbering the rest.
type Document map[string]any

// Merge overlays src on top of dst at the top level only. Nested objects
// are replaced wholesale, mirroring the JSONB || operator used by the
// relational store so both backends agree on write semantics.
func Merge(dst, src Document) Document {
	if dst == nil && src == nil {
		return nil
	}
	out := make(Document, len(dst)+len(src))
	for key, value := range dst {
		out[key] = value
	}
	for key, value := range src {
		out[key] = value
	}
	return out
}

// Document converts the record into its persisted form via a JSON
// round-trip, so field names and omitempty rules stay in one place.
func (r Record) Document() (Document, error) {
	raw, err := sonic.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "encode match record")
	}

	var doc Document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decode match record document")
	}
	return doc, nil
}

// FromDocument is the inverse of Record.Document. Unknown keys are
// dropped; missing keys leave zero values.
func FromDocument(doc Document) (Record, error) {
	raw, err := sonic.Marshal(doc)
	if err != nil {
		return Record{}, errors.Wrap(err, "encode document")
	}

	var record Record
	if err := sonic.Unmarshal(raw, &record); err != nil {
		return Record{}, errors.Wrap(err, "decode document into match record")
	}
	return record, nil
}
