package repos

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
)

// RecordRepo stores per-session JSON blobs under fixed keys. Last write wins.
type RecordRepo struct{ db *sqlx.DB }

func NewRecordRepo(db *sqlx.DB) *RecordRepo { return &RecordRepo{db: db} }

// Get decodes the record into dest and reports whether it existed.
func (r *RecordRepo) Get(sessionID, key string, dest any) (bool, error) {
	var raw string
	err := r.db.Get(&raw, `SELECT value_json FROM records WHERE session_id = ? AND key = ?`, sessionID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(raw), dest)
}

func (r *RecordRepo) Put(sessionID, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO records(session_id, key, value_json, updated_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, key) DO UPDATE SET value_json = excluded.value_json, updated_at = CURRENT_TIMESTAMP
	`, sessionID, key, string(b))
	return err
}

func (r *RecordRepo) Delete(sessionID, key string) error {
	_, err := r.db.Exec(`DELETE FROM records WHERE session_id = ? AND key = ?`, sessionID, key)
	return err
}
