package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"gasper/internal/domain"
	"gasper/internal/validate"
)

var ErrItemNotFound = errors.New("cart item not found")

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartItemRow struct {
	ItemID      string  `db:"item_id"`
	Name        string  `db:"name"`
	Price       float64 `db:"price"`
	Qty         int     `db:"qty"`
	Category    string  `db:"category"`
	BookingJSON string  `db:"booking_json"`
}

func (r cartItemRow) item() domain.CartItem {
	it := domain.CartItem{ID: r.ItemID, Name: r.Name, Price: r.Price, Quantity: r.Qty, Category: r.Category}
	if r.BookingJSON != "" {
		var d domain.BookingDetails
		if json.Unmarshal([]byte(r.BookingJSON), &d) == nil {
			it.BookingDetails = &d
		}
	}
	return it
}

func bookingJSON(d *domain.BookingDetails) string {
	if d == nil {
		return ""
	}
	b, _ := json.Marshal(d)
	return string(b)
}

func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID)
	if err == nil {
		return cartID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	_, err = r.db.Exec(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)
		ON CONFLICT(session_id) DO NOTHING`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// UpsertItem appends the item, or bumps the quantity of an existing line with the same id.
// A line never exceeds validate.MaxQty.
func (r *CartRepo) UpsertItem(cartID string, it domain.CartItem) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,item_id,name,price,qty,category,booking_json,seq,created_at)
		VALUES(?,?,?,?,?,?,?,
		  (SELECT COALESCE(MAX(seq),0)+1 FROM cart_items WHERE cart_id = ?),
		  CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,item_id) DO UPDATE
		SET qty = MIN(cart_items.qty + excluded.qty, ?), updated_at = CURRENT_TIMESTAMP
	`, cartID, it.ID, it.Name, it.Price, it.Quantity, it.Category, bookingJSON(it.BookingDetails), cartID, validate.MaxQty)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID)
	return err
}

// Items returns the lines in insertion order.
func (r *CartRepo) Items(cartID string) ([]domain.CartItem, error) {
	var rows []cartItemRow
	if err := r.db.Select(&rows, `
	  SELECT item_id, name, price, qty, category, booking_json
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY seq
	`, cartID); err != nil {
		return nil, err
	}
	out := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.item())
	}
	return out, nil
}

// Remove deletes one line and returns it so callers can release attached bookings.
func (r *CartRepo) Remove(cartID, itemID string) (domain.CartItem, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return domain.CartItem{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var row cartItemRow
	if err := tx.Get(&row, `
	  SELECT item_id, name, price, qty, category, booking_json
	  FROM cart_items WHERE cart_id = ? AND item_id = ?
	`, cartID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartItem{}, ErrItemNotFound
		}
		return domain.CartItem{}, err
	}
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND item_id = ?`, cartID, itemID); err != nil {
		return domain.CartItem{}, err
	}
	return row.item(), tx.Commit()
}

func (r *CartRepo) Clear(cartID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
