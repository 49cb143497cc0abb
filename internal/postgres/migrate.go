package postgres

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		user_name VARCHAR(50) NOT NULL,
		email VARCHAR(100) NOT NULL UNIQUE,
		first_name VARCHAR(50) NOT NULL DEFAULT '',
		last_name VARCHAR(50) NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(20) NOT NULL,
		PRIMARY KEY (user_id, role)
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		description VARCHAR(200) NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS sellers (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id),
		store_name VARCHAR(100) NOT NULL,
		description VARCHAR(500) NOT NULL DEFAULT '',
		contact_email VARCHAR(100) NOT NULL,
		contact_phone VARCHAR(20) NOT NULL DEFAULT '',
		address VARCHAR(200) NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		is_approved BOOLEAN NOT NULL DEFAULT false,
		rating NUMERIC(3,2) NOT NULL DEFAULT 0,
		total_sales INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sellers_is_approved ON sellers(is_approved)`,

	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description VARCHAR(500) NOT NULL,
		price NUMERIC(18,2) NOT NULL CHECK (price > 0),
		stock INTEGER NOT NULL CHECK (stock >= 0),
		image_url TEXT NOT NULL DEFAULT '',
		category_id BIGINT NOT NULL REFERENCES categories(id),
		seller_id BIGINT REFERENCES sellers(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_seller_id ON products(seller_id)`,

	`CREATE TABLE IF NOT EXISTS carts (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id BIGSERIAL PRIMARY KEY,
		cart_id BIGINT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(18,2) NOT NULL,
		UNIQUE (cart_id, product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS wishlist_items (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		added_at TIMESTAMP WITH TIME ZONE NOT NULL,
		UNIQUE (user_id, product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		order_date TIMESTAMP WITH TIME ZONE NOT NULL,
		status VARCHAR(20) NOT NULL,
		total_amount NUMERIC(18,2) NOT NULL,
		shipping_address VARCHAR(500) NOT NULL,
		contact_phone VARCHAR(20) NOT NULL,
		payment_method VARCHAR(50) NOT NULL,
		payment_status VARCHAR(20) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_order_date ON orders(order_date)`,

	// seller_id is 0 for products without a seller, so it carries no foreign key
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
		seller_id BIGINT NOT NULL DEFAULT 0,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(18,2) NOT NULL,
		status VARCHAR(20) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_seller_id ON order_items(seller_id)`,

	`CREATE TABLE IF NOT EXISTS seller_reviews (
		id BIGSERIAL PRIMARY KEY,
		seller_id BIGINT NOT NULL REFERENCES sellers(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment VARCHAR(1000) NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		is_approved BOOLEAN NOT NULL DEFAULT false,
		UNIQUE (seller_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seller_reviews_is_approved ON seller_reviews(is_approved)`,
}

// Migrate creates the schema. Every statement is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	for i, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
