package provjson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode renders a document as indented JSON, map keys sorted, HTML
// escaping off. The output is the export artifact and the golden-file
// form: the same store state always encodes to the same bytes.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}
