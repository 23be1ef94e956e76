package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OpLogRepo writes the operational log the read-side dashboard consumes.
// Writes are best-effort from the caller's perspective: a pipeline run should
// not fail because its log line did not land.
type OpLogRepo struct{}

func NewOpLogRepo() *OpLogRepo { return &OpLogRepo{} }

// Write appends one log entry with optional structured detail.
func (r *OpLogRepo) Write(ctx context.Context, level, message string, detail map[string]interface{}) error {
	pool := GetPool()
	if pool == nil {
		return &PersistenceError{Op: "oplog write", Err: fmt.Errorf("database pool not initialized")}
	}

	var detailJSON []byte
	if detail != nil {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			return &PersistenceError{Op: "oplog marshal", Err: err}
		}
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO operational_log (id, level, message, detail, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), level, message, detailJSON, time.Now().UTC(),
	); err != nil {
		return &PersistenceError{Op: "oplog write", Err: err}
	}
	return nil
}
