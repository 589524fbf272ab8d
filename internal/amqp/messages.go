package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"cassa/internal/core"
)

type EventType string

const (
	SaleCreated    EventType = "sale.created"
	SaleDeleted    EventType = "sale.deleted"
	ExpenseCreated EventType = "expense.created"
	ExpenseUpdated EventType = "expense.updated"
	ExpenseDeleted EventType = "expense.deleted"
)

func (t EventType) Valid() bool {
	switch t {
	case SaleCreated, SaleDeleted, ExpenseCreated, ExpenseUpdated, ExpenseDeleted:
		return true
	}
	return false
}

// Event announces a change to the sale or expense history. It carries the
// affected period so consumers can rebuild only that month; the record
// itself is read back from the store.
type Event struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(t EventType, id string, d core.Date) *Event {
	return &Event{
		Type:      t,
		ID:        id,
		Year:      d.Year,
		Month:     d.Month,
		Timestamp: time.Now().UTC(),
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks an event body.
func EventFromJSON(data []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if !evt.Type.Valid() {
		return nil, fmt.Errorf("decode event: unknown type %q", evt.Type)
	}
	if evt.Month < 1 || evt.Month > 12 || evt.Year < 1 {
		return nil, fmt.Errorf("decode event: invalid period %04d-%02d", evt.Year, evt.Month)
	}
	return &evt, nil
}
