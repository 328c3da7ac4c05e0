package record

import (
	"context"
	"database/sql"
	"fmt"
)

// PutEntity upserts an entity record and returns its computed key.
// Put has last-write-wins semantics: writing an entity with an existing
// (collection, key) replaces the stored row. Callers that need
// write-once behavior check existence first.
func (s *Store) PutEntity(ctx context.Context, e Entity) (Key, error) {
	key, err := s.putEntity(ctx, s.db, e)
	if err != nil {
		return nil, fmt.Errorf("put entity: %w", err)
	}
	return key, nil
}

// execer abstracts sql.DB and sql.Tx for writes that run either
// standalone or inside an import transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) putEntity(ctx context.Context, db execer, e Entity) (Key, error) {
	if !IsEntityCollection(e.Collection) {
		return nil, fmt.Errorf("unknown entity collection %q", e.Collection)
	}
	key, err := e.Key()
	if err != nil {
		return nil, err
	}

	attrJSON, err := marshalAttributes(e.Attributes)
	if err != nil {
		return nil, err
	}

	var invalidatedByType ActivityType
	var invalidatedByStart int64
	if e.WasInvalidatedBy != nil {
		invalidatedByType = e.WasInvalidatedBy.Type
		invalidatedByStart = e.WasInvalidatedBy.StartedAtTime
	}

	// Denormalized columns backing the translation indexes. Harmless
	// zero values for collections that never use them.
	targetLanguage := e.Attributes.GetString(AttrTargetLanguage)
	index := e.Attributes.GetInt(AttrIndex)
	completedAt := e.Attributes.GetInt(AttrCompletedAtTime)

	_, err = db.ExecContext(ctx, `
		INSERT INTO entities
		(collection, key, attributes, generated_at, invalidated_at, completed_at,
		 target_language, idx, generated_by_type, generated_by_start,
		 invalidated_by_type, invalidated_by_start, quoted_from, revision_of)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, key) DO UPDATE SET
			attributes = excluded.attributes,
			generated_at = excluded.generated_at,
			invalidated_at = excluded.invalidated_at,
			completed_at = excluded.completed_at,
			target_language = excluded.target_language,
			idx = excluded.idx,
			generated_by_type = excluded.generated_by_type,
			generated_by_start = excluded.generated_by_start,
			invalidated_by_type = excluded.invalidated_by_type,
			invalidated_by_start = excluded.invalidated_by_start,
			quoted_from = excluded.quoted_from,
			revision_of = excluded.revision_of
	`,
		string(e.Collection),
		key.String(),
		attrJSON,
		e.GeneratedAtTime,
		e.InvalidatedAtTime,
		completedAt,
		targetLanguage,
		index,
		string(e.WasGeneratedBy.Type),
		e.WasGeneratedBy.StartedAtTime,
		string(invalidatedByType),
		invalidatedByStart,
		e.WasQuotedFrom,
		e.WasRevisionOf.String(),
	)
	if err != nil {
		return nil, err
	}

	return key, nil
}

// PutActivity upserts an activity record. Ending an activity rewrites
// the same row with endedAtTime set.
func (s *Store) PutActivity(ctx context.Context, a Activity) error {
	if err := s.putActivity(ctx, s.db, a); err != nil {
		return fmt.Errorf("put activity: %w", err)
	}
	return nil
}

func (s *Store) putActivity(ctx context.Context, db execer, a Activity) error {
	usedJSON, err := marshalUsed(a.Used)
	if err != nil {
		return err
	}
	informedJSON, err := marshalInformedBy(a.WasInformedBy)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO activities
		(type, started_at, ended_at, target_language, idx, agent, used, informed_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(type, started_at) DO UPDATE SET
			ended_at = excluded.ended_at,
			target_language = excluded.target_language,
			idx = excluded.idx,
			agent = excluded.agent,
			used = excluded.used,
			informed_by = excluded.informed_by
	`,
		string(a.Type),
		a.StartedAtTime,
		a.EndedAtTime,
		a.TargetLanguage,
		a.Index,
		a.WasAssociatedWith,
		usedJSON,
		informedJSON,
	)
	return err
}

// ImportBatch writes a set of entities and activities in one
// transaction. Either every record lands or none do, which is the
// guarantee document import relies on.
func (s *Store) ImportBatch(ctx context.Context, entities []Entity, activities []Activity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, a := range activities {
		if err := s.putActivity(ctx, tx, a); err != nil {
			return fmt.Errorf("import batch: activity %s/%d: %w", a.Type, a.StartedAtTime, err)
		}
	}
	for _, e := range entities {
		if _, err := s.putEntity(ctx, tx, e); err != nil {
			return fmt.Errorf("import batch: entity %s: %w", e.Collection, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import batch: commit: %w", err)
	}
	return nil
}
