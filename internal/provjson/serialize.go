package provjson

import (
	"context"
	"fmt"
	"strings"

	"github.com/seedcat/seedprov/internal/attr"
	"github.com/seedcat/seedprov/internal/record"
)

// Relation identifier abbreviations, one counter each.
const (
	abbrUsed           = "u"
	abbrAssociatedWith = "aw"
	abbrDerivedFrom    = "df"
	abbrGeneratedBy    = "gb"
	abbrInformedBy     = "ib"
	abbrInvalidatedBy  = "iv"
)

// serializer accumulates one document. The output document and the
// per-relation counters live here rather than in package state, so
// concurrent Serialize calls never interfere.
type serializer struct {
	store        *record.Store
	doc          *Document
	counters     map[string]int
	includeAttrs bool
}

// Serialize builds the provenance document for one sentence of one
// target language: the language's creation activity plus every
// activity scoped to (targetLanguage, index), each with its generated
// entities and relation edges. With includeAttributes the full stored
// attributes ride along, which is required for lossless re-import.
func Serialize(ctx context.Context, store *record.Store, sourceLanguage, targetLanguage string, index int64, includeAttributes bool) (*Document, error) {
	s := &serializer{
		store:        store,
		doc:          newDocument(sourceLanguage),
		counters:     make(map[string]int),
		includeAttrs: includeAttributes,
	}

	languageActivities, err := store.ActivitiesBySentence(ctx, targetLanguage, 0)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	sentenceActivities, err := store.ActivitiesBySentence(ctx, targetLanguage, index)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}

	var activities []record.Activity
	if len(languageActivities) > 0 {
		activities = append(activities, languageActivities[0])
	}
	activities = append(activities, sentenceActivities...)

	for _, activity := range activities {
		s.addActivity(activity)

		for _, collection := range record.EntityCollections {
			generated, err := store.EntitiesByActivity(ctx, collection, activity.Key())
			if err != nil {
				return nil, fmt.Errorf("serialize: %w", err)
			}
			for _, entity := range generated {
				if err := s.addEntity(entity); err != nil {
					return nil, fmt.Errorf("serialize: %w", err)
				}
			}
		}
	}

	return s.doc, nil
}

func newDocument(sourceLanguage string) *Document {
	return &Document{
		Prefix: map[string]string{
			"prov":    ProvPrefixURL,
			"oldi":    OldiPrefixURL,
			"wn":      WnPrefixURL,
			Namespace: SeedPrefixURL,
		},
		Entity: map[string]Attributes{
			SeedDatasetID(sourceLanguage): {
				"prov:location": seedContentURL + "/" + sourceLanguage,
				"prov:type":     "oldi:dataset",
			},
		},
		Activity: map[string]Attributes{},
		Agent:    map[string]Attributes{},
	}
}

// relationID mints the next anonymous identifier for one relation
// family, counting per family from 1.
func (s *serializer) relationID(abbr string) string {
	s.counters[abbr]++
	return fmt.Sprintf("_:%s%d", abbr, s.counters[abbr])
}

func (s *serializer) addActivity(a record.Activity) {
	id := encodeActivityID(a.Key())

	rec := Attributes{"prov:type": Namespace + ":" + string(a.Type)}
	if a.StartedAtTime != 0 {
		rec["prov:startTime"] = encodeTimestamp(a.StartedAtTime)
	}
	if a.EndedAtTime != 0 {
		rec["prov:endTime"] = encodeTimestamp(a.EndedAtTime)
	}
	if s.includeAttrs {
		mergeAttributes(rec, a.Attributes())
	}
	s.doc.Activity[id] = rec

	for _, item := range a.Used {
		if s.doc.Used == nil {
			s.doc.Used = map[string]Usage{}
		}
		s.doc.Used[s.relationID(abbrUsed)] = Usage{
			Activity: id,
			Entity:   encodeEntityID(item.Entity, item.Key),
		}
	}

	if s.doc.WasAssociatedWith == nil {
		s.doc.WasAssociatedWith = map[string]Association{}
	}
	s.doc.WasAssociatedWith[s.relationID(abbrAssociatedWith)] = Association{
		Activity: id,
		Agent:    encodeAgentID(a.WasAssociatedWith),
	}

	for _, informant := range a.WasInformedBy {
		if s.doc.WasInformedBy == nil {
			s.doc.WasInformedBy = map[string]Communication{}
		}
		s.doc.WasInformedBy[s.relationID(abbrInformedBy)] = Communication{
			Informant: encodeActivityID(informant),
			Informed:  id,
		}
	}

	s.registerAgent(a.WasAssociatedWith)
}

// registerAgent records an agent the first time it is seen. Human
// agents carry the shared person type; software agents cite themselves.
func (s *serializer) registerAgent(agent string) {
	id := encodeAgentID(agent)

	agentType := agent
	if i := strings.IndexByte(agent, '/'); i >= 0 {
		agentType = agent[:i]
	}

	provType := "prov:SoftwareAgent"
	seedType := id
	if agentType == "Translator" {
		provType = "prov:Person"
		seedType = Namespace + ":" + agentType
	}

	s.doc.Agent[id] = Attributes{
		"prov:type": []any{provType, seedType},
	}
}

// edgeEmitter emits the relation edges of one entity. Each collection
// maps to a fixed emitter list.
type edgeEmitter func(s *serializer, id string, e record.Entity)

var entityEdges = map[record.Collection][]edgeEmitter{
	record.MachineTranslations: {emitGeneration},
	record.PosTags:             {emitGeneration},
	record.TargetLanguages:     {emitGeneration},
	record.Tokens:              {emitGeneration},
	record.Sentences:           {emitGeneration, emitQuotation},
	record.Translations:        {emitGeneration, emitInvalidation, emitQuotation, emitRevision},
	record.WordnetQueries:      {emitCitation, emitGeneration, emitQuotation},
}

func (s *serializer) addEntity(e record.Entity) error {
	emitters, ok := entityEdges[e.Collection]
	if !ok {
		return fmt.Errorf("serialization for %q not supported", e.Collection)
	}
	key, err := e.Key()
	if err != nil {
		return err
	}
	id := encodeEntityID(e.Collection, key)

	rec := Attributes{"prov:type": Namespace + ":" + string(e.Collection)}
	if s.includeAttrs {
		mergeAttributes(rec, e.Attributes)
	}
	s.doc.Entity[id] = rec

	for _, emit := range emitters {
		emit(s, id, e)
	}
	return nil
}

func emitGeneration(s *serializer, id string, e record.Entity) {
	if s.doc.WasGeneratedBy == nil {
		s.doc.WasGeneratedBy = map[string]Generation{}
	}
	s.doc.WasGeneratedBy[s.relationID(abbrGeneratedBy)] = Generation{
		Activity: encodeActivityID(e.WasGeneratedBy),
		Entity:   id,
		Time:     encodeTimestamp(e.GeneratedAtTime),
	}
}

func emitInvalidation(s *serializer, id string, e record.Entity) {
	if e.WasInvalidatedBy == nil {
		return
	}
	if s.doc.WasInvalidatedBy == nil {
		s.doc.WasInvalidatedBy = map[string]Invalidation{}
	}
	inv := Invalidation{
		Activity: encodeActivityID(*e.WasInvalidatedBy),
		Entity:   id,
	}
	if e.InvalidatedAtTime != 0 {
		inv.Time = encodeTimestamp(e.InvalidatedAtTime)
	}
	s.doc.WasInvalidatedBy[s.relationID(abbrInvalidatedBy)] = inv
}

func emitQuotation(s *serializer, id string, e record.Entity) {
	if e.WasQuotedFrom == "" {
		return
	}
	if s.doc.WasDerivedFrom == nil {
		s.doc.WasDerivedFrom = map[string]Derivation{}
	}
	s.doc.WasDerivedFrom[s.relationID(abbrDerivedFrom)] = Derivation{
		Activity:        encodeActivityID(e.WasGeneratedBy),
		GeneratedEntity: id,
		Type:            "Quotation",
		UsedEntity:      e.WasQuotedFrom,
	}
}

func emitRevision(s *serializer, id string, e record.Entity) {
	if e.WasRevisionOf == nil {
		return
	}
	if s.doc.WasDerivedFrom == nil {
		s.doc.WasDerivedFrom = map[string]Derivation{}
	}
	s.doc.WasDerivedFrom[s.relationID(abbrDerivedFrom)] = Derivation{
		Activity:        encodeActivityID(e.WasGeneratedBy),
		GeneratedEntity: id,
		Type:            "Revision",
		UsedEntity:      encodeEntityID(record.Translations, e.WasRevisionOf),
	}
}

// emitCitation adds the dictionary database citation the first wordnet
// query brings in.
func emitCitation(s *serializer, _ string, _ record.Entity) {
	s.doc.Entity[WordnetID] = Attributes{
		"prov:location": "wn3.1.dict.tar.gz",
		"prov:type":     "wn:database",
		"wn:license":    "wn:license-and-commercial-use",
		"wn:version":    3.1,
	}
}

// mergeAttributes encodes stored attributes into a document record.
// Attribute keys carry the namespace prefix; timestamp values are
// ISO-encoded with zero sentinels omitted; non-primitive values are
// carried as JSON strings.
func mergeAttributes(rec Attributes, attrs attr.Object) {
	for key, value := range attrs {
		if value == nil {
			continue
		}

		if n, isInt := value.(attr.Int); isInt && strings.Contains(key, "Time") {
			if n == 0 {
				continue
			}
			rec[Namespace+":"+key] = encodeTimestamp(int64(n))
			continue
		}

		rec[Namespace+":"+key] = encodeAttributeValue(value)
	}
}

func encodeAttributeValue(value attr.Value) any {
	switch v := value.(type) {
	case attr.String:
		return string(v)
	case attr.Int:
		return int64(v)
	case attr.Bool:
		return bool(v)
	default:
		encoded, err := attr.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
