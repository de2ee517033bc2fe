package dnstcp

import "strconv"

// Find returns the transaction with the given transaction id, or nil.
// Linear scan is acceptable per spec.md §9: observed in-flight depth is
// small, typically at most 16 pipelined queries per flow.
func (s *FlowDNSState) Find(txID uint16) *Transaction {
	for _, tx := range s.transactions {
		if tx.TxID == txID {
			return tx
		}
	}
	return nil
}

// MarkDone records that the consumer has finished with every transaction
// up to and including id, making them eligible for Reap.
func (s *FlowDNSState) MarkDone(id uint16) {
	if id > s.transactionDone {
		s.transactionDone = id
	}
}

// Reap removes every transaction whose id is <= the last id MarkDone was
// called with and whose reply has been seen. Calling Reap twice with no
// parse or MarkDone call in between is a no-op the second time, since
// there is nothing left to remove.
func (s *FlowDNSState) Reap() {
	kept := s.transactions[:0]
	for _, tx := range s.transactions {
		if tx.TxID <= s.transactionDone && tx.ReplySeen {
			continue
		}
		kept = append(kept, tx)
	}
	s.transactions = kept

	transactionsInFlight.WithLabelValues(flowLabel(s.ID)).Set(float64(len(s.transactions)))
}

// UpdateID writes this flow's transaction count into *externalID if the
// flow has progressed further than externalID already records, mirroring
// DNSStateUpdateTransactionId: it is how the enclosing pipeline learns
// how far parsing has advanced.
func (s *FlowDNSState) UpdateID(externalID *uint16) {
	if s.transactionCnt > *externalID {
		*externalID = s.transactionCnt
	}
}

// TransactionCount returns the number of transactions ever created on
// this flow, monotonically increasing over the flow's lifetime.
func (s *FlowDNSState) TransactionCount() uint16 {
	return s.transactionCnt
}

// Transactions returns the flow's current in-flight transactions, in
// arrival order.
func (s *FlowDNSState) Transactions() []*Transaction {
	return s.transactions
}

func flowLabel(id uint64) string {
	return strconv.FormatUint(id, 10)
}
