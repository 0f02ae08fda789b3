package repository

import (
	"context"
	"encoding/json"

	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/persistence"
)

// AuditRepository stores audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByEntity(ctx context.Context, entity domain.AuditEntity, entityID int64) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	db persistence.Querier
}

// NewAuditRepository builds repository.
func NewAuditRepository(db persistence.Querier) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO audit_log (actor_id, entity, entity_id, action, details)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return persistence.QuerierFrom(ctx, r.db).QueryRow(ctx, query,
		entry.ActorID,
		entry.Entity,
		entry.EntityID,
		entry.Action,
		payload,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListByEntity(ctx context.Context, entity domain.AuditEntity, entityID int64) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, actor_id, entity, entity_id, action, details, created_at
        FROM audit_log WHERE entity=$1 AND entity_id=$2 ORDER BY created_at ASC, id ASC`
	rows, err := persistence.QuerierFrom(ctx, r.db).Query(ctx, query, entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var (
			entry   domain.AuditEntry
			payload []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Entity,
			&entry.EntityID,
			&entry.Action,
			&payload,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &entry.Details); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
