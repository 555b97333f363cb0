package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/estate/backend/internal/domain/shared/valueobject"
)

func mustMoneyPKR(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyPKRFromString(amount)
	require.NoError(t, err)
	return m
}
