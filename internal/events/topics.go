package events

import (
	"context"
	"strconv"
)

const (
	TopicOrderCreated      = "order.created"
	TopicItemStatusChanged = "order.item.status_changed"
)

// Partition key = order id, so every event of one order keeps its order.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }

// Discard drops every event. Used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, string, []byte, Envelope) error { return nil }
