package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Carts (one per anonymous session)
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id      TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  item_id      TEXT NOT NULL,
  name         TEXT NOT NULL,
  price        NUMERIC NOT NULL CHECK (price >= 0),
  qty          INTEGER NOT NULL CHECK (qty >= 1),
  category     TEXT NOT NULL DEFAULT '',
  booking_json TEXT NOT NULL DEFAULT '',
  seq          INTEGER NOT NULL,
  created_at   TEXT,
  updated_at   TEXT,
  PRIMARY KEY (cart_id, item_id)
);
CREATE INDEX IF NOT EXISTS idx_cart_items_seq ON cart_items(cart_id, seq);

-- Bookings (appointment slots)
CREATE TABLE IF NOT EXISTS bookings(
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  flow TEXT NOT NULL CHECK (flow IN ('call','consulting')),
  date TEXT NOT NULL,          -- YYYY-MM-DD
  time24 TEXT NOT NULL,        -- HH:MM
  duration INTEGER NOT NULL CHECK (duration > 0),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date);
CREATE INDEX IF NOT EXISTS idx_bookings_session ON bookings(session_id);

-- Booking wizard state
CREATE TABLE IF NOT EXISTS wizards(
  session_id TEXT PRIMARY KEY,
  state_json TEXT NOT NULL,
  updated_at TEXT
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  customer_name TEXT,
  customer_email TEXT,
  subtotal NUMERIC NOT NULL,
  tax NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PAID',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(session_id);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  booking_json TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (order_id, item_id)
);

-- Account records: profile, shipping, payment methods, flags
CREATE TABLE IF NOT EXISTS records(
  session_id TEXT NOT NULL,
  key TEXT NOT NULL,
  value_json TEXT NOT NULL,
  updated_at TEXT,
  PRIMARY KEY (session_id, key)
);

-- Waitlist signups
CREATE TABLE IF NOT EXISTS waitlist(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  role TEXT NOT NULL,
  company_size TEXT NOT NULL,
  provider_id TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_waitlist_email ON waitlist(LOWER(email));
`
	_, err := db.Exec(schema)
	return err
}
