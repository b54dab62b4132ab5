package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"fintrack/internal/core"
)

type LedgerAction string

const (
	ActionCreated LedgerAction = "created"
	ActionUpdated LedgerAction = "updated"
	ActionDeleted LedgerAction = "deleted"
)

// LedgerEvent announces that a user's ledger changed in a given month.
// Consumers reload whatever they need from storage.
type LedgerEvent struct {
	UserID        int64        `json:"user_id"`
	Month         string       `json:"month"`
	Action        LedgerAction `json:"action"`
	TransactionID int64        `json:"transaction_id,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

func NewLedgerEvent(userID int64, month core.Month, action LedgerAction, transactionID int64) *LedgerEvent {
	return &LedgerEvent{
		UserID:        userID,
		Month:         month.String(),
		Action:        action,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ParsedMonth returns the month the event refers to.
func (m *LedgerEvent) ParsedMonth() (core.Month, error) {
	return core.ParseMonth(m.Month)
}

// LedgerEventFromJSON decodes and validates a ledger event.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID <= 0 {
		return nil, errors.New("ledger event without user id")
	}
	if _, err := msg.ParsedMonth(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// InsightDigestMessage carries the insights generated for one user and month.
type InsightDigestMessage struct {
	UserID      int64     `json:"user_id"`
	Month       string    `json:"month"`
	Insights    []string  `json:"insights"`
	GeneratedAt time.Time `json:"generated_at"`
}

func NewInsightDigestMessage(d core.InsightDigest) *InsightDigestMessage {
	return &InsightDigestMessage{
		UserID:      d.UserID,
		Month:       d.Month.String(),
		Insights:    d.Insights,
		GeneratedAt: d.GeneratedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *InsightDigestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InsightDigestMessageFromJSON(data []byte) (*InsightDigestMessage, error) {
	var msg InsightDigestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
