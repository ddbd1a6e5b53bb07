package events

import (
	"encoding/json"
	"time"

	"github.com/sebuszqo/FinanceLedger/internal/finance/domain"
	"github.com/shopspring/decimal"
)

// BalanceChangedMessage announces that a committed ledger write moved one account balance.
// Consumers re-read the balance when they need its absolute value.
type BalanceChangedMessage struct {
	AccountID     int             `json:"account_id"`
	TransactionID string          `json:"transaction_id"`
	Operation     string          `json:"operation"`
	Delta         decimal.Decimal `json:"delta"`
	ActorID       string          `json:"actor_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func NewBalanceChangedMessage(change domain.BalanceChange) *BalanceChangedMessage {
	occurredAt := change.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return &BalanceChangedMessage{
		AccountID:     change.AccountID,
		TransactionID: change.TransactionID,
		Operation:     change.Operation,
		Delta:         change.Delta,
		ActorID:       change.ActorID,
		OccurredAt:    occurredAt,
	}
}

func (m *BalanceChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BalanceChangedMessageFromJSON(data []byte) (*BalanceChangedMessage, error) {
	var msg BalanceChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
