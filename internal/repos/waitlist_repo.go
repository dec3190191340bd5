package repos

import "github.com/jmoiron/sqlx"

type WaitlistRepo struct{ db *sqlx.DB }

func NewWaitlistRepo(db *sqlx.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

type WaitlistEntry struct {
	ID          string `db:"id"`
	Email       string `db:"email"`
	Role        string `db:"role"`
	CompanySize string `db:"company_size"`
	ProviderID  string `db:"provider_id"`
	CreatedAt   string `db:"created_at"`
}

func (r *WaitlistRepo) Insert(e WaitlistEntry) error {
	_, err := r.db.Exec(`
		INSERT INTO waitlist(id, email, role, company_size, provider_id, created_at)
		VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, e.ID, e.Email, e.Role, e.CompanySize, e.ProviderID)
	return err
}

func (r *WaitlistRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM waitlist`)
	return n, err
}
