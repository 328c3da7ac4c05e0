package provjson

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/seedcat/seedprov/internal/attr"
	"github.com/seedcat/seedprov/internal/record"
)

// Ref is the sentence a document covers, recovered during import.
type Ref struct {
	SourceLanguage string
	TargetLanguage string
	Index          int64
}

// Deserialize replays a document into the store. All writes happen in
// one store transaction: a malformed document persists nothing. The
// returned Ref carries the recovered sentence triple; an empty document
// is reported as ok=false with nothing written.
func Deserialize(ctx context.Context, store *record.Store, doc *Document) (Ref, bool, error) {
	if doc.Empty() {
		return Ref{}, false, nil
	}

	relations := mapRelations(doc)

	activities, err := decodeActivities(doc, relations)
	if err != nil {
		return Ref{}, false, err
	}
	entities, ref, err := decodeEntities(doc, relations)
	if err != nil {
		return Ref{}, false, err
	}

	if err := store.ImportBatch(ctx, entities, activities); err != nil {
		return Ref{}, false, fmt.Errorf("deserialize: %w", err)
	}
	return ref, true, nil
}

// relationBag collects every relation pointing out of one identifier,
// grouped during the single pass over the document's relation tables.
type relationBag struct {
	used              []string
	wasAssociatedWith string
	wasGeneratedBy    string
	wasInformedBy     []string
	wasInvalidatedBy  string
	wasQuotedFrom     string
	wasRevisionOf     string
	times             map[string]string
}

type relationMap map[string]*relationBag

func (m relationMap) bag(source string) *relationBag {
	b, ok := m[source]
	if !ok {
		b = &relationBag{times: make(map[string]string)}
		m[source] = b
	}
	return b
}

// mapRelations indexes every relation table by its source identifier,
// per the fixed source/target roles of each relation type. Multi-valued
// relations are replayed in sorted identifier order, so the same
// document always maps to the same records.
func mapRelations(doc *Document) relationMap {
	relations := make(relationMap)

	for _, id := range slices.Sorted(maps.Keys(doc.Used)) {
		entry := doc.Used[id]
		if entry.Activity == "" || entry.Entity == "" {
			continue
		}
		b := relations.bag(entry.Activity)
		b.used = append(b.used, entry.Entity)
	}

	for _, id := range slices.Sorted(maps.Keys(doc.WasInformedBy)) {
		entry := doc.WasInformedBy[id]
		if entry.Informed == "" || entry.Informant == "" {
			continue
		}
		b := relations.bag(entry.Informed)
		b.wasInformedBy = append(b.wasInformedBy, entry.Informant)
	}

	for _, entry := range doc.WasAssociatedWith {
		if entry.Activity == "" || entry.Agent == "" {
			continue
		}
		relations.bag(entry.Activity).wasAssociatedWith = entry.Agent
	}

	for _, entry := range doc.WasGeneratedBy {
		if entry.Entity == "" || entry.Activity == "" {
			continue
		}
		b := relations.bag(entry.Entity)
		b.wasGeneratedBy = entry.Activity
		if entry.Time != "" {
			b.times["wasGeneratedBy"] = entry.Time
		}
	}

	for _, entry := range doc.WasInvalidatedBy {
		if entry.Entity == "" || entry.Activity == "" {
			continue
		}
		b := relations.bag(entry.Entity)
		b.wasInvalidatedBy = entry.Activity
		if entry.Time != "" {
			b.times["wasInvalidatedBy"] = entry.Time
		}
	}

	for _, entry := range doc.WasDerivedFrom {
		if entry.GeneratedEntity == "" || entry.UsedEntity == "" {
			continue
		}
		b := relations.bag(entry.GeneratedEntity)
		if entry.Type == "Quotation" {
			b.wasQuotedFrom = entry.UsedEntity
		} else {
			b.wasRevisionOf = entry.UsedEntity
		}
	}

	return relations
}

func decodeActivities(doc *Document, relations relationMap) ([]record.Activity, error) {
	var activities []record.Activity

	for id, rec := range doc.Activity {
		bag, tracked := relations[id]
		if !tracked {
			continue
		}
		collection, key, ok := decodeEntityID(id)
		if !ok || collection != record.Activities || len(key) == 0 {
			continue
		}

		startRaw, ok := rec["prov:startTime"].(string)
		if !ok {
			return nil, docErrorf("activity %q has no prov:startTime", id)
		}
		started, err := decodeTimestamp(startRaw)
		if err != nil {
			return nil, docErrorf("activity %q start time %q: %v", id, startRaw, err)
		}

		a := record.Activity{
			Type:          record.ActivityType(key[0]),
			StartedAtTime: started,
		}

		if endRaw, ok := rec["prov:endTime"].(string); ok {
			ended, err := decodeTimestamp(endRaw)
			if err != nil {
				return nil, docErrorf("activity %q end time %q: %v", id, endRaw, err)
			}
			a.EndedAtTime = ended
		}

		attrs, err := decodeAttributes(rec)
		if err != nil {
			return nil, docErrorf("activity %q: %v", id, err)
		}
		a.TargetLanguage = attrs.GetString(record.AttrTargetLanguage)
		a.Index = attrs.GetInt(record.AttrIndex)

		if agent, ok := decodeAgentID(bag.wasAssociatedWith); ok {
			a.WasAssociatedWith = agent
		}

		// External citations are never replayed as local entities.
		for _, usedID := range bag.used {
			usedCollection, usedKey, ok := decodeEntityID(usedID)
			if !ok {
				continue
			}
			a.Used = append(a.Used, record.UsedEntity{Entity: usedCollection, Key: usedKey})
		}
		for _, informantID := range bag.wasInformedBy {
			if informant, ok := decodeActivityKey(informantID); ok {
				a.WasInformedBy = append(a.WasInformedBy, informant)
			}
		}

		activities = append(activities, a)
	}

	return activities, nil
}

func decodeEntities(doc *Document, relations relationMap) ([]record.Entity, Ref, error) {
	var entities []record.Entity
	var ref Ref

	for id, rec := range doc.Entity {
		collection, _, ok := decodeEntityID(id)
		if !ok || !record.IsEntityCollection(collection) {
			continue
		}
		bag, tracked := relations[id]
		if !tracked {
			continue
		}

		attrs, err := decodeAttributes(rec)
		if err != nil {
			return nil, Ref{}, docErrorf("entity %q: %v", id, err)
		}

		e := record.Entity{Collection: collection, Attributes: attrs}

		switch collection {
		case record.Translations:
			ref.TargetLanguage = attrs.GetString(record.AttrTargetLanguage)
			ref.Index = attrs.GetInt(record.AttrIndex)
		case record.Sentences:
			ref.SourceLanguage = attrs.GetString(record.AttrSourceLanguage)
		}

		if generator, ok := decodeActivityKey(bag.wasGeneratedBy); ok {
			e.WasGeneratedBy = generator
			if raw := bag.times["wasGeneratedBy"]; raw != "" {
				t, err := decodeTimestamp(raw)
				if err != nil {
					return nil, Ref{}, docErrorf("entity %q generation time %q: %v", id, raw, err)
				}
				e.GeneratedAtTime = t
			}
		}
		if invalidator, ok := decodeActivityKey(bag.wasInvalidatedBy); ok {
			e.WasInvalidatedBy = &invalidator
			if raw := bag.times["wasInvalidatedBy"]; raw != "" {
				t, err := decodeTimestamp(raw)
				if err != nil {
					return nil, Ref{}, docErrorf("entity %q invalidation time %q: %v", id, raw, err)
				}
				e.InvalidatedAtTime = t
			}
		}

		e.WasQuotedFrom = bag.wasQuotedFrom

		// Revision sources must decode to a full translation version key.
		if bag.wasRevisionOf != "" {
			if revCollection, revKey, ok := decodeEntityID(bag.wasRevisionOf); ok &&
				revCollection == record.Translations && len(revKey) == 3 {
				e.WasRevisionOf = revKey
			}
		}

		entities = append(entities, e)
	}

	return entities, ref, nil
}

func decodeActivityKey(id string) (record.ActivityKey, bool) {
	collection, key, ok := decodeEntityID(id)
	if !ok || collection != record.Activities {
		return record.ActivityKey{}, false
	}
	activityKey, err := record.ParseActivityKey(key)
	if err != nil {
		return record.ActivityKey{}, false
	}
	return activityKey, true
}

// decodeAttributes extracts the stored attributes from a document
// record: only namespaced keys count, Time-carrying keys are
// timestamp-decoded, and string values are JSON-decoded with a
// graceful fallback to the raw string.
func decodeAttributes(rec Attributes) (attr.Object, error) {
	attrs := attr.Object{}

	for key, value := range rec {
		name, ok := strings.CutPrefix(key, Namespace+":")
		if !ok {
			continue
		}

		if strings.Contains(name, "Time") {
			raw, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("timestamp attribute %q is not a string", name)
			}
			t, err := decodeTimestamp(raw)
			if err != nil {
				return nil, fmt.Errorf("timestamp attribute %q: %w", name, err)
			}
			attrs[name] = attr.Int(t)
			continue
		}

		decoded, err := decodeAttributeValue(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		if decoded != nil {
			attrs[name] = decoded
		}
	}

	return attrs, nil
}

func decodeAttributeValue(value any) (attr.Value, error) {
	if s, ok := value.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			// Plain text, not an encoded structure.
			return attr.String(s), nil
		}
		return attr.FromJSON(parsed)
	}
	return attr.FromJSON(value)
}
