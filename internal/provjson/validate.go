package provjson

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
	schemaErr   error
)

func documentSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		compiled := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := compiled.Err(); err != nil {
			schemaErr = fmt.Errorf("compile document schema: %w", err)
			return
		}
		schemaValue = compiled.LookupPath(cue.ParsePath("#Document"))
		if err := schemaValue.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup document schema: %w", err)
		}
	})
	return schemaValue, schemaErr
}

// ParseDocument validates raw JSON against the document schema and
// decodes it. Any schema violation is a DocumentError: the payload is
// rejected before a single record is considered for import.
func ParseDocument(data []byte) (*Document, error) {
	schema, err := documentSchema()
	if err != nil {
		return nil, err
	}

	expr, err := cuejson.Extract("document.json", data)
	if err != nil {
		return nil, docErrorf("invalid JSON: %v", err)
	}
	value := schema.Context().BuildExpr(expr)
	if err := value.Err(); err != nil {
		return nil, docErrorf("invalid JSON: %v", err)
	}
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return nil, docErrorf("schema violation: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, docErrorf("decode: %v", err)
	}
	return &doc, nil
}
