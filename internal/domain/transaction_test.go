package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func TestTransaction_JSONKeepsExactAmount(t *testing.T) {
	tx := Transaction{
		ID:        "a",
		Type:      TransactionTypeCash,
		PartyName: "Ravi",
		Amount:    decimal.RequireFromString("-120.505"),
		Date:      civil.Date{Year: 2024, Month: 6, Day: 1},
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, want := range []string{`"amount":"-120.505"`, `"transactionDate":"2024-06-01"`, `"transactionId":"a"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("json.Marshal() = %s, missing %s", data, want)
		}
	}

	var back Transaction
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if !back.Amount.Equal(tx.Amount) {
		t.Errorf("Amount after round trip = %s, want %s", back.Amount, tx.Amount)
	}
}
