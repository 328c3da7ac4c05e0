package provjson

import (
	"strings"
	"time"

	"github.com/seedcat/seedprov/internal/record"
)

// Namespace prefixes. The seed namespace marks identifiers owned by
// the local store; oldi and wn cite external resources and are never
// replayed as local entities.
const (
	Namespace     = "seed"
	ProvPrefixURL = "https://www.w3.org/ns/prov#"
	OldiPrefixURL = "https://github.com/openlanguagedata/seed/blob/main/"
	WnPrefixURL   = "https://wordnet.princeton.edu/"
	SeedPrefixURL = "https://seed-cat.vercel.app/"

	seedContentURL = "https://github.com/openlanguagedata/seed/blob/main/seed"
)

// SeedDatasetID returns the external identifier of the source dataset
// for one language.
func SeedDatasetID(sourceLanguage string) string {
	return "oldi:seed/" + sourceLanguage
}

// WordnetID is the external identifier of the cited dictionary
// database.
const WordnetID = "wn:wordnet"

// MachineTranslationID returns the local identifier of a cached
// machine translation, the quotation source of an adopted suggestion.
func MachineTranslationID(targetLanguage string, index int64) string {
	return encodeEntityID(record.MachineTranslations, record.SentenceKey(targetLanguage, index))
}

// encodeEntityID builds the deterministic identifier of one record:
// namespace, collection name, slash-joined key.
func encodeEntityID(collection record.Collection, key record.Key) string {
	return Namespace + ":" + string(collection) + "/" + key.String()
}

func encodeActivityID(key record.ActivityKey) string {
	return encodeEntityID(record.Activities, key.Key())
}

func encodeAgentID(agent string) string {
	return Namespace + ":" + agent
}

// decodeEntityID splits a local identifier back into collection and
// key. Identifiers outside the seed namespace decode to ok=false.
func decodeEntityID(id string) (record.Collection, record.Key, bool) {
	rest, found := strings.CutPrefix(id, Namespace+":")
	if !found {
		return "", nil, false
	}
	parts := strings.Split(rest, "/")
	return record.Collection(parts[0]), record.Key(parts[1:]), true
}

// decodeAgentID strips the namespace prefix from an agent identifier.
// Agents outside the seed namespace decode to ok=false.
func decodeAgentID(id string) (string, bool) {
	return strings.CutPrefix(id, Namespace+":")
}

// timestampLayout matches the millisecond ISO-8601 form the documents
// carry.
const timestampLayout = "2006-01-02T15:04:05.000Z"

func encodeTimestamp(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(timestampLayout)
}

func decodeTimestamp(value string) (int64, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
