package redisx

import "time"

const (
	// session:{token} -> user id
	KeySession = "session:%s"

	// Idempotency create order: idem:order:create:{user_id}:{client key} -> order id, or "pending"
	KeyIdemOrderCreate = "idem:order:create:%s:%s"

	// Order detail cache: order:{order_id} -> JSON {gen, order}
	KeyOrder = "order:%d"
	// Order cache generation: order:gen:{order_id} -> counter bumped on every change
	KeyOrderGen = "order:gen:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSession     = 24 * time.Hour
	TTLIdempotency = 24 * time.Hour
	TTLOrderCache  = 5 * time.Minute
	TTLOrderGen    = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
