package repos

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"gasper/internal/wizard"
)

type WizardRepo struct{ db *sqlx.DB }

func NewWizardRepo(db *sqlx.DB) *WizardRepo { return &WizardRepo{db: db} }

// Get returns sql.ErrNoRows when the session has no wizard in progress.
func (r *WizardRepo) Get(sessionID string) (*wizard.State, error) {
	var raw string
	if err := r.db.Get(&raw, `SELECT state_json FROM wizards WHERE session_id = ?`, sessionID); err != nil {
		return nil, err
	}
	var s wizard.State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *WizardRepo) Save(sessionID string, s *wizard.State) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO wizards(session_id, state_json, updated_at)
		VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET state_json = excluded.state_json, updated_at = CURRENT_TIMESTAMP
	`, sessionID, string(b))
	return err
}

func (r *WizardRepo) Delete(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM wizards WHERE session_id = ?`, sessionID)
	return err
}
