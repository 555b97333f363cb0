package bank

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estate/backend/internal/domain/shared"
)

func createTestAccount(t *testing.T) *Account {
	t.Helper()
	account, err := NewAccount("PK36SCBL0000001123456702", "Standard Chartered", "Estate Holdings")
	require.NoError(t, err)
	return account
}

func sampleRows() []StatementRow {
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []StatementRow{
		{Date: d, Description: "Buyer Payment PL-202", Amount: decimal.NewFromInt(500000), Balance: decimal.NewFromInt(500000)},
		{Date: d.AddDate(0, 0, 2), Description: "Office rent", Amount: decimal.NewFromInt(-80000), Balance: decimal.NewFromInt(420000)},
	}
}

func TestNewAccount(t *testing.T) {
	account := createTestAccount(t)
	assert.Equal(t, "PK36SCBL0000001123456702", account.AccountNo)
	assert.True(t, account.Balance.IsZero())

	_, err := NewAccount("", "HBL", "")
	assert.Error(t, err)
}

func TestImportRows(t *testing.T) {
	t.Run("rows become unmatched transactions", func(t *testing.T) {
		account := createTestAccount(t)

		imported, err := account.ImportRows(sampleRows())
		require.NoError(t, err)
		require.Len(t, imported, 2)

		assert.Equal(t, TransactionCredit, imported[0].Type)
		assert.Equal(t, TransactionDebit, imported[1].Type)
		// Debit amounts are stored positive, direction lives in the type.
		assert.True(t, imported[1].Amount.Equal(decimal.NewFromInt(80000)))
		assert.False(t, imported[0].Matched)

		assert.Equal(t, "420000.00", account.Balance.Amount().StringFixed(2))
		assert.Len(t, account.UnmatchedTransactions(), 2)
	})

	t.Run("empty import rejected", func(t *testing.T) {
		account := createTestAccount(t)
		_, err := account.ImportRows(nil)
		assert.Error(t, err)
	})
}

func TestMarkMatched(t *testing.T) {
	account := createTestAccount(t)
	imported, err := account.ImportRows(sampleRows())
	require.NoError(t, err)
	entryID := uuid.New()

	t.Run("first match succeeds", func(t *testing.T) {
		require.NoError(t, account.MarkMatched(imported[0].ID, entryID))

		tx := account.FindTransaction(imported[0].ID)
		assert.True(t, tx.Matched)
		require.NotNil(t, tx.MatchedTo)
		assert.Equal(t, entryID, *tx.MatchedTo)
		assert.Len(t, account.UnmatchedTransactions(), 1)
	})

	t.Run("second match fails", func(t *testing.T) {
		err := account.MarkMatched(imported[0].ID, uuid.New())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_RECONCILED", domainErr.Code)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		assert.Error(t, account.MarkMatched(uuid.New(), entryID))
	})
}
