package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StatementRequestMessage asks a worker to build and export one unit's
// statement. Dates travel as YYYY-MM-DD strings; the worker parses and
// validates them before building.
type StatementRequestMessage struct {
	RequestID string    `json:"request_id"`
	ClientID  string    `json:"client_id"`
	UnitID    string    `json:"unit_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	AsOf      string    `json:"as_of,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStatementRequestMessage creates a request message with a fresh id.
func NewStatementRequestMessage(clientID, unitID, from, to, asOf string) *StatementRequestMessage {
	return &StatementRequestMessage{
		RequestID: uuid.NewString(),
		ClientID:  clientID,
		UnitID:    unitID,
		From:      from,
		To:        to,
		AsOf:      asOf,
		Timestamp: time.Now(),
	}
}

// Validate checks the identity fields a worker cannot proceed without.
func (m *StatementRequestMessage) Validate() error {
	if m.ClientID == "" || m.UnitID == "" {
		return fmt.Errorf("statement request message: missing client or unit id")
	}
	if m.From == "" || m.To == "" {
		return fmt.Errorf("statement request message: missing date range")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *StatementRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StatementRequestMessageFromJSON creates a message from JSON bytes
func StatementRequestMessageFromJSON(data []byte) (*StatementRequestMessage, error) {
	var msg StatementRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
