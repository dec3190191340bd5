package repos

import (
	"errors"

	"github.com/jmoiron/sqlx"

	"gasper/internal/domain"
	"gasper/internal/schedule"
)

var ErrSlotTaken = errors.New("slot overlaps an existing booking")

type BookingRepo struct{ db *sqlx.DB }

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

func (r *BookingRepo) ListByDate(date string) ([]domain.Booking, error) {
	out := []domain.Booking{}
	err := r.db.Select(&out, `
		SELECT id, session_id, flow, date, time24, duration, COALESCE(created_at,'') AS created_at
		FROM bookings
		WHERE date = ?
		ORDER BY time24
	`, date)
	return out, err
}

func (r *BookingRepo) ListBySession(sessionID string) ([]domain.Booking, error) {
	out := []domain.Booking{}
	err := r.db.Select(&out, `
		SELECT id, session_id, flow, date, time24, duration, COALESCE(created_at,'') AS created_at
		FROM bookings
		WHERE session_id = ?
		ORDER BY date, time24
	`, sessionID)
	return out, err
}

// Reserve inserts b unless its interval overlaps another booking on the same date.
// The check and the insert share one transaction.
func (r *BookingRepo) Reserve(b domain.Booking) error {
	start, err := schedule.ParseTime24(b.Time24)
	if err != nil {
		return err
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing []domain.Booking
	if err := tx.Select(&existing, `
		SELECT id, session_id, flow, date, time24, duration, COALESCE(created_at,'') AS created_at
		FROM bookings WHERE date = ?
	`, b.Date); err != nil {
		return err
	}
	for _, e := range existing {
		es, err := schedule.ParseTime24(e.Time24)
		if err != nil {
			continue
		}
		if schedule.Overlaps(start, b.Duration, es, e.Duration) {
			return ErrSlotTaken
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO bookings(id, session_id, flow, date, time24, duration, created_at)
		VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, b.ID, b.SessionID, b.Flow, b.Date, b.Time24, b.Duration); err != nil {
		return err
	}
	return tx.Commit()
}

// Release deletes a booking owned by sessionID. Missing rows are not an error.
func (r *BookingRepo) Release(id, sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM bookings WHERE id = ? AND session_id = ?`, id, sessionID)
	return err
}
