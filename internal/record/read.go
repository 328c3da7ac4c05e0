package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const entityColumns = `collection, key, attributes, generated_at, invalidated_at,
	generated_by_type, generated_by_start, invalidated_by_type, invalidated_by_start,
	quoted_from, revision_of`

const activityColumns = `type, started_at, ended_at, target_language, idx, agent, used, informed_by`

// GetEntity retrieves one entity by collection and key.
// Absence is reported as ok=false, not an error.
func (s *Store) GetEntity(ctx context.Context, collection Collection, key Key) (Entity, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entityColumns+`
		FROM entities
		WHERE collection = ? AND key = ?
	`, string(collection), key.String())

	e, err := scanEntityRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, false, nil
	}
	if err != nil {
		return Entity{}, false, fmt.Errorf("get entity: %w", err)
	}
	return e, true, nil
}

// EntityKeys returns every key in a collection in ascending key order.
// Returns an empty slice (not nil) when the collection is empty.
func (s *Store) EntityKeys(ctx context.Context, collection Collection) ([]Key, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key FROM entities
		WHERE collection = ?
		ORDER BY key COLLATE BINARY ASC
	`, string(collection))
	if err != nil {
		return nil, fmt.Errorf("query entity keys: %w", err)
	}
	defer rows.Close()

	keys := []Key{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan entity key: %w", err)
		}
		keys = append(keys, ParseKey(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity keys: %w", err)
	}
	return keys, nil
}

// EntitiesByActivity returns the entities of one collection generated
// by the given activity, in ascending key order.
func (s *Store) EntitiesByActivity(ctx context.Context, collection Collection, activity ActivityKey) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entityColumns+`
		FROM entities
		WHERE collection = ? AND generated_by_type = ? AND generated_by_start = ?
		ORDER BY key COLLATE BINARY ASC
	`, string(collection), string(activity.Type), activity.StartedAtTime)
	if err != nil {
		return nil, fmt.Errorf("query entities by activity: %w", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// GetActivity retrieves one activity by its key.
// Absence is reported as ok=false, not an error.
func (s *Store) GetActivity(ctx context.Context, key ActivityKey) (Activity, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE type = ? AND started_at = ?
	`, string(key.Type), key.StartedAtTime)

	a, err := scanActivityRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Activity{}, false, nil
	}
	if err != nil {
		return Activity{}, false, fmt.Errorf("get activity: %w", err)
	}
	return a, true, nil
}

// ActivitiesBySentence returns every activity scoped to one (target
// language, sentence index) pair, ordered by start time. Language-level
// activities use index 0.
func (s *Store) ActivitiesBySentence(ctx context.Context, targetLanguage string, index int64) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE target_language = ? AND idx = ?
		ORDER BY started_at ASC, type COLLATE BINARY ASC
	`, targetLanguage, index)
	if err != nil {
		return nil, fmt.Errorf("query activities by sentence: %w", err)
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return activities, nil
}

// LatestTranslation returns the newest translation version for one
// (target language, sentence index), regardless of invalidation state.
// The version is current when its InvalidatedAtTime is zero.
func (s *Store) LatestTranslation(ctx context.Context, targetLanguage string, index int64) (Entity, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entityColumns+`
		FROM entities
		WHERE collection = 'translations' AND target_language = ? AND idx = ?
		ORDER BY generated_at DESC
		LIMIT 1
	`, targetLanguage, index)

	e, err := scanEntityRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, false, nil
	}
	if err != nil {
		return Entity{}, false, fmt.Errorf("latest translation: %w", err)
	}
	return e, true, nil
}

// TranslationVersions returns the full stored history for one
// (target language, sentence index), oldest first.
func (s *Store) TranslationVersions(ctx context.Context, targetLanguage string, index int64) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entityColumns+`
		FROM entities
		WHERE collection = 'translations' AND target_language = ? AND idx = ?
		ORDER BY generated_at ASC
	`, targetLanguage, index)
	if err != nil {
		return nil, fmt.Errorf("query translation versions: %w", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// CompletedTranslations returns the current, completed translations of
// one target language, ordered by completion time. A translation counts
// as completed when it has not been invalidated and carries a nonzero
// completedAtTime.
func (s *Store) CompletedTranslations(ctx context.Context, targetLanguage string) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entityColumns+`
		FROM entities
		WHERE collection = 'translations'
		  AND invalidated_at = 0 AND target_language = ? AND completed_at > 0
		ORDER BY completed_at ASC, key COLLATE BINARY ASC
	`, targetLanguage)
	if err != nil {
		return nil, fmt.Errorf("query completed translations: %w", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// CountCompletedTranslations returns the number of current, completed
// translations for one target language.
func (s *Store) CountCompletedTranslations(ctx context.Context, targetLanguage string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM entities
		WHERE collection = 'translations'
		  AND invalidated_at = 0 AND target_language = ? AND completed_at > 0
	`, targetLanguage).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed translations: %w", err)
	}
	return count, nil
}

// CountEntities returns the number of records in one collection.
func (s *Store) CountEntities(ctx context.Context, collection Collection) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entities WHERE collection = ?
	`, string(collection)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count entities: %w", err)
	}
	return count, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(sc scanner) (Entity, error) {
	var e Entity
	var collection, key, attrJSON string
	var genType, invType, revisionOf string
	var invStart int64

	if err := sc.Scan(
		&collection, &key, &attrJSON, &e.GeneratedAtTime, &e.InvalidatedAtTime,
		&genType, &e.WasGeneratedBy.StartedAtTime, &invType, &invStart,
		&e.WasQuotedFrom, &revisionOf,
	); err != nil {
		return Entity{}, err
	}

	e.Collection = Collection(collection)
	e.WasGeneratedBy.Type = ActivityType(genType)

	if invType != "" || invStart != 0 {
		e.WasInvalidatedBy = &ActivityKey{Type: ActivityType(invType), StartedAtTime: invStart}
	}
	e.WasRevisionOf = ParseKey(revisionOf)

	attrs, err := unmarshalAttributes(attrJSON)
	if err != nil {
		return Entity{}, err
	}
	e.Attributes = attrs

	return e, nil
}

func scanEntityRow(row *sql.Row) (Entity, error) {
	return scanEntity(row)
}

func collectEntities(rows *sql.Rows) ([]Entity, error) {
	entities := []Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return entities, nil
}

func scanActivity(sc scanner) (Activity, error) {
	var a Activity
	var typ, usedJSON, informedJSON string

	if err := sc.Scan(
		&typ, &a.StartedAtTime, &a.EndedAtTime, &a.TargetLanguage, &a.Index,
		&a.WasAssociatedWith, &usedJSON, &informedJSON,
	); err != nil {
		return Activity{}, err
	}

	a.Type = ActivityType(typ)

	used, err := unmarshalUsed(usedJSON)
	if err != nil {
		return Activity{}, err
	}
	a.Used = used

	informed, err := unmarshalInformedBy(informedJSON)
	if err != nil {
		return Activity{}, err
	}
	a.WasInformedBy = informed

	return a, nil
}

func scanActivityRow(row *sql.Row) (Activity, error) {
	return scanActivity(row)
}
