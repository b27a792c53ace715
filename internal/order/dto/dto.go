package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	TopicOrdersCreate    = "orders/create"
	TopicOrdersUpdated   = "orders/updated"
	TopicOrdersPaid      = "orders/paid"
	TopicOrdersCancelled = "orders/cancelled"
	TopicOrdersDelete    = "orders/delete"
)

// OrderWebhook is the subset of the Shopify order payload ingestion reads.
type OrderWebhook struct {
	ID             int64      `json:"id"`
	LineItems      []LineItem `json:"line_items"`
	NoteAttributes []Property `json:"note_attributes"`
	CancelledAt    *string    `json:"cancelled_at"`
}

func (o *OrderWebhook) IsCancelled() bool {
	return o.CancelledAt != nil && strings.TrimSpace(*o.CancelledAt) != ""
}

type LineItem struct {
	ID         int64      `json:"id"`
	ProductID  *int64     `json:"product_id"`
	Quantity   int        `json:"quantity"`
	Properties []Property `json:"properties"`
}

type Property struct {
	Name  string        `json:"name"`
	Value PropertyValue `json:"value"`
}

// PropertyValue accepts the strings, numbers and booleans Shopify sends as
// property values.
type PropertyValue string

func (v *PropertyValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = PropertyValue(s)
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case float64:
		*v = PropertyValue(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*v = PropertyValue(strconv.FormatBool(x))
	default:
		*v = PropertyValue(string(b))
	}
	return nil
}

// IngestInput is one webhook delivery, from HTTP or the Kafka relay.
type IngestInput struct {
	ShopDomain string
	Topic      string
	Order      OrderWebhook
}

type IngestResult struct {
	OrderID string   `json:"order_id"`
	Ignored bool     `json:"ignored,omitempty"` // unknown or uninstalled shop
	Deleted bool     `json:"deleted,omitempty"` // cancellation or deletion
	Rows    int      `json:"rows"`
	Skipped int      `json:"skipped"`
	Touched []string `json:"touched"`
	Tags    []string `json:"tags,omitempty"`
}

// RelayEnvelope is the Kafka message carrying a relayed webhook.
type RelayEnvelope struct {
	Topic      string          `json:"topic"`
	ShopDomain string          `json:"shop_domain"`
	Payload    json.RawMessage `json:"payload"`
}
