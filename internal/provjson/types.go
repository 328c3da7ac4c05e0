// Package provjson builds and replays PROV-JSON interchange documents
// capturing the causal history of one translated sentence.
//
// Document shape follows https://www.w3.org/submissions/prov-json/schema:
// top-level prefix/entity/activity/agent maps plus one map per relation
// type. Identifiers are deterministic strings built from collection
// name and key, so the same stored record always serializes to the
// same identifier; relation entries carry synthetic anonymous
// identifiers that hold no meaning and are never matched on replay.
package provjson

import "fmt"

// Attributes is one entity, activity, or agent record in a document.
// Values are JSON literals; non-primitive attribute values are carried
// as JSON-encoded strings.
type Attributes map[string]any

// Generation is a wasGeneratedBy entry.
type Generation struct {
	Activity string `json:"prov:activity,omitempty"`
	Entity   string `json:"prov:entity"`
	Time     string `json:"prov:time,omitempty"`
}

// Usage is a used entry.
type Usage struct {
	Activity string `json:"prov:activity"`
	Entity   string `json:"prov:entity"`
}

// Communication is a wasInformedBy entry.
type Communication struct {
	Informant string `json:"prov:informant"`
	Informed  string `json:"prov:informed"`
}

// Invalidation is a wasInvalidatedBy entry.
type Invalidation struct {
	Activity string `json:"prov:activity,omitempty"`
	Entity   string `json:"prov:entity"`
	Time     string `json:"prov:time,omitempty"`
}

// Derivation is a wasDerivedFrom entry. The prov:type tag
// distinguishes quotations from revisions.
type Derivation struct {
	Activity        string `json:"prov:activity,omitempty"`
	GeneratedEntity string `json:"prov:generatedEntity"`
	Type            string `json:"prov:type,omitempty"`
	UsedEntity      string `json:"prov:usedEntity"`
}

// Association is a wasAssociatedWith entry.
type Association struct {
	Activity string `json:"prov:activity"`
	Agent    string `json:"prov:agent,omitempty"`
}

// Document is one PROV-JSON interchange document. Field order matches
// the exported layout; map keys serialize in sorted order.
type Document struct {
	Prefix            map[string]string        `json:"prefix,omitempty"`
	Agent             map[string]Attributes    `json:"agent"`
	Activity          map[string]Attributes    `json:"activity"`
	Entity            map[string]Attributes    `json:"entity"`
	Used              map[string]Usage         `json:"used,omitempty"`
	WasAssociatedWith map[string]Association   `json:"wasAssociatedWith,omitempty"`
	WasDerivedFrom    map[string]Derivation    `json:"wasDerivedFrom,omitempty"`
	WasGeneratedBy    map[string]Generation    `json:"wasGeneratedBy,omitempty"`
	WasInformedBy     map[string]Communication `json:"wasInformedBy,omitempty"`
	WasInvalidatedBy  map[string]Invalidation  `json:"wasInvalidatedBy,omitempty"`
}

// Empty reports whether the document carries no records at all.
func (d *Document) Empty() bool {
	return d == nil || (len(d.Entity) == 0 && len(d.Activity) == 0 && len(d.Agent) == 0)
}

// DocumentError reports a malformed interchange document. Imports that
// fail with a DocumentError persist nothing.
type DocumentError struct {
	Reason string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("malformed provenance document: %s", e.Reason)
}

func docErrorf(format string, args ...any) error {
	return &DocumentError{Reason: fmt.Sprintf(format, args...)}
}
