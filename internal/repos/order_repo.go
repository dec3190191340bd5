package repos

import (
	"errors"

	"github.com/jmoiron/sqlx"

	"gasper/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- Order header ----------
type OrderRow struct {
	ID            string  `db:"id"`
	SessionID     string  `db:"session_id" json:"-"`
	PaymentMethod string  `db:"payment_method"`
	Customer      string  `db:"customer_name"`
	Email         string  `db:"customer_email"`
	Subtotal      float64 `db:"subtotal"`
	Tax           float64 `db:"tax"`
	Total         float64 `db:"total"`
	Status        string  `db:"status"`
	CreatedAt     string  `db:"created_at"`
}

type OrderItemRow struct {
	ItemID      string  `db:"item_id"`
	Name        string  `db:"name"`
	Qty         int     `db:"qty"`
	Price       float64 `db:"price"`
	Subtotal    float64 `db:"subtotal"`
	BookingJSON string  `db:"booking_json"`
}

// ErrEmptyCart is returned by CreateFromCart when the cart has no lines.
var ErrEmptyCart = errors.New("cart is empty")

// Create writes the header and every line in one transaction.
func (r *OrderRepo) Create(o OrderRow, items []domain.CartItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertOrder(tx, o, items); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateFromCart orders the lines cartID holds at commit time and deletes them.
// Reading, ordering and deleting share one transaction, so a line added
// concurrently ends up either in the order or still in the cart.
// header builds the order row from the lines that were read.
func (r *OrderRepo) CreateFromCart(cartID string, header func([]domain.CartItem) OrderRow) (OrderRow, []domain.CartItem, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return OrderRow{}, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var rows []cartItemRow
	if err := tx.Select(&rows, `
	  SELECT item_id, name, price, qty, category, booking_json
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY seq
	`, cartID); err != nil {
		return OrderRow{}, nil, err
	}
	if len(rows) == 0 {
		return OrderRow{}, nil, ErrEmptyCart
	}
	items := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.item())
	}

	o := header(items)
	if err := insertOrder(tx, o, items); err != nil {
		return OrderRow{}, nil, err
	}
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return OrderRow{}, nil, err
	}
	if _, err := tx.Exec(`UPDATE carts SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID); err != nil {
		return OrderRow{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return OrderRow{}, nil, err
	}
	o.Status = "PAID"
	return o, items, nil
}

func insertOrder(tx *sqlx.Tx, o OrderRow, items []domain.CartItem) error {
	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, session_id, payment_method, customer_name, customer_email, subtotal, tax, total, status, created_at)
	  VALUES
	    (?,  ?,          ?,              ?,             ?,              ?,        ?,   ?,     'PAID', CURRENT_TIMESTAMP)
	`, o.ID, o.SessionID, o.PaymentMethod, o.Customer, o.Email, o.Subtotal, o.Tax, o.Total); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, item_id, name, qty, price, booking_json)
		  VALUES(?, ?, ?, ?, ?, ?)
		`, o.ID, it.ID, it.Name, it.Quantity, it.Price, bookingJSON(it.BookingDetails)); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) Get(orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	if err := r.db.Get(&o, `
		SELECT id, session_id, payment_method, COALESCE(customer_name,'') AS customer_name,
		       COALESCE(customer_email,'') AS customer_email, subtotal, tax, total, status,
		       COALESCE(created_at,'') AS created_at
		FROM orders
		WHERE id = ?
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	var items []OrderItemRow
	if err := r.db.Select(&items, `
		SELECT item_id, name, qty, price, (qty * price) AS subtotal, booking_json
		FROM order_items
		WHERE order_id = ?
		ORDER BY name
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}
	return o, items, nil
}

// ListBySession returns the orders placed from a session, newest first.
func (r *OrderRepo) ListBySession(sessionID string) ([]OrderRow, error) {
	var out []OrderRow
	err := r.db.Select(&out, `
		SELECT id, session_id, payment_method, COALESCE(customer_name,'') AS customer_name,
		       COALESCE(customer_email,'') AS customer_email, subtotal, tax, total, status,
		       COALESCE(created_at,'') AS created_at
		FROM orders
		WHERE session_id = ?
		ORDER BY datetime(created_at) DESC
	`, sessionID)
	return out, err
}
