// Package revision maintains the append-only translation history per
// (target language, sentence index).
//
// Every edit produces a new translation record and invalidates the
// prior current one, so the full history stays queryable. Manual edits
// chain to their predecessor by revision; machine-translation adoptions
// chain by quotation, never both. At most one record per chain is
// current (invalidatedAtTime == 0).
package revision

import (
	"context"
	"fmt"
	"strings"

	"github.com/seedcat/seedprov/internal/attr"
	"github.com/seedcat/seedprov/internal/record"
)

// Manager performs revision-chain operations for one language pair
// sentence set.
type Manager struct {
	store *record.Store
	clock record.Clock
}

// New creates a revision manager.
func New(store *record.Store, clock record.Clock) *Manager {
	return &Manager{store: store, clock: clock}
}

// Current returns the current translation for (targetLanguage, index):
// the newest version, provided it has not been invalidated.
func (m *Manager) Current(ctx context.Context, targetLanguage string, index int64) (record.Entity, bool, error) {
	latest, ok, err := m.store.LatestTranslation(ctx, targetLanguage, index)
	if err != nil {
		return record.Entity{}, false, fmt.Errorf("current translation: %w", err)
	}
	if !ok || latest.InvalidatedAtTime != 0 {
		return record.Entity{}, false, nil
	}
	return latest, true, nil
}

// Revise appends a new translation version.
//
// The prior current version, if any, is rewritten in place with
// invalidatedAtTime set to now and wasInvalidatedBy pointing at the
// editing activity. When text is non-empty a new current record is
// written: newlines collapse to spaces and surrounding whitespace is
// trimmed; quotedFrom marks a machine-translation adoption, otherwise
// the new record chains to its predecessor by wasRevisionOf. An empty
// text invalidates without replacing (a clearing edit).
func (m *Manager) Revise(ctx context.Context, targetLanguage string, index int64, text string, activity record.ActivityKey, completedAtTime int64, quotedFrom string) error {
	now := m.clock.NowMillis()

	latest, hasLatest, err := m.store.LatestTranslation(ctx, targetLanguage, index)
	if err != nil {
		return fmt.Errorf("revise translation: %w", err)
	}
	hasCurrent := hasLatest && latest.InvalidatedAtTime == 0

	if hasCurrent {
		invalidated := latest
		invalidated.Attributes = latest.Attributes.Clone()
		invalidated.InvalidatedAtTime = now
		invalidated.WasInvalidatedBy = &record.ActivityKey{
			Type:          activity.Type,
			StartedAtTime: activity.StartedAtTime,
		}
		if _, err := m.store.PutEntity(ctx, invalidated); err != nil {
			return fmt.Errorf("revise translation: invalidate current: %w", err)
		}
	}

	content := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if content == "" {
		return nil
	}

	next := record.Entity{
		Collection: record.Translations,
		Attributes: attr.Object{
			record.AttrTargetLanguage:  attr.String(targetLanguage),
			record.AttrIndex:           attr.Int(index),
			record.AttrContent:         attr.String(content),
			record.AttrCompletedAtTime: attr.Int(completedAtTime),
		},
		GeneratedAtTime: now,
		WasGeneratedBy:  activity,
		WasQuotedFrom:   quotedFrom,
	}
	if hasCurrent && quotedFrom == "" {
		next.WasRevisionOf = record.TranslationKey(targetLanguage, index, latest.GeneratedAtTime)
	}

	if _, err := m.store.PutEntity(ctx, next); err != nil {
		return fmt.Errorf("revise translation: write new version: %w", err)
	}
	return nil
}

// MarkDone appends a revision carrying the current completion time.
func (m *Manager) MarkDone(ctx context.Context, targetLanguage string, index int64, text string, activity record.ActivityKey) error {
	return m.Revise(ctx, targetLanguage, index, text, activity, m.clock.NowMillis(), "")
}

// Reopen resets the current version's completedAtTime to zero in
// place, without creating a new revision. Reopening a sentence with no
// current translation is a no-op reported as ok=false.
func (m *Manager) Reopen(ctx context.Context, targetLanguage string, index int64) (bool, error) {
	current, ok, err := m.Current(ctx, targetLanguage, index)
	if err != nil {
		return false, fmt.Errorf("reopen translation: %w", err)
	}
	if !ok {
		return false, nil
	}

	reopened := current
	reopened.Attributes = current.Attributes.Clone()
	reopened.Attributes[record.AttrCompletedAtTime] = attr.Int(0)
	if _, err := m.store.PutEntity(ctx, reopened); err != nil {
		return false, fmt.Errorf("reopen translation: %w", err)
	}
	return true, nil
}
