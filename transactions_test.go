package dnstcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowDNSStateFind(t *testing.T) {
	s := NewFlowDNSState(1)
	s.transactions = append(s.transactions, &Transaction{TxID: 7}, &Transaction{TxID: 8})

	tx := s.Find(8)
	require.NotNil(t, tx)
	assert.Equal(t, uint16(8), tx.TxID)

	assert.Nil(t, s.Find(9))
}

func TestFlowDNSStateReap(t *testing.T) {
	s := NewFlowDNSState(1)
	s.transactions = append(s.transactions,
		&Transaction{TxID: 1, ReplySeen: true},
		&Transaction{TxID: 2, ReplySeen: false},
		&Transaction{TxID: 3, ReplySeen: true},
	)

	s.MarkDone(2)
	s.Reap()

	require.Len(t, s.transactions, 2)
	assert.Equal(t, uint16(2), s.transactions[0].TxID)
	assert.Equal(t, uint16(3), s.transactions[1].TxID)
}

func TestFlowDNSStateUpdateID(t *testing.T) {
	s := NewFlowDNSState(1)
	s.transactionCnt = 5

	var external uint16 = 2
	s.UpdateID(&external)
	assert.Equal(t, uint16(5), external)

	s.UpdateID(&external)
	assert.Equal(t, uint16(5), external)
}

func TestFlowDNSStateFree(t *testing.T) {
	s := NewFlowDNSState(1)
	s.transactions = append(s.transactions, &Transaction{TxID: 1})
	s.toServer.begin(16)

	s.Free()

	assert.Nil(t, s.transactions)
	assert.True(t, s.toServer.idle())
}
