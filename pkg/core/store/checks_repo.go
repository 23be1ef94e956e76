package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ScheduledCheckRepo persists computed filing due dates.
type ScheduledCheckRepo struct{}

func NewScheduledCheckRepo() *ScheduledCheckRepo { return &ScheduledCheckRepo{} }

// Upsert stores one scheduled check keyed by (company, form type, period
// end). Recomputation for the same period overwrites rather than duplicates.
func (r *ScheduledCheckRepo) Upsert(ctx context.Context, check ScheduledCheck) error {
	pool := GetPool()
	if pool == nil {
		return &PersistenceError{Op: "scheduled check upsert", Err: fmt.Errorf("database pool not initialized")}
	}

	if check.ID == uuid.Nil {
		check.ID = uuid.New()
	}

	query := `
		INSERT INTO scheduled_checks (id, company_id, form_type, period_end, due_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, form_type, period_end)
		DO UPDATE SET due_date = EXCLUDED.due_date;
	`

	if _, err := pool.Exec(ctx, query,
		check.ID, check.CompanyID, check.FormType, check.PeriodEnd, check.DueDate,
	); err != nil {
		return &PersistenceError{Op: "scheduled check upsert", Err: err}
	}
	return nil
}
