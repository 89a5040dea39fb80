// Package publisher tracks wire subscriptions and requests: transaction ids,
// subscription state, response correlation and retry classification.
package publisher

import "sync/atomic"

// TransactionIDGenerator hands out transaction ids that never repeat for the
// lifetime of the generator. Ids start at 1; 0 means "no transaction".
type TransactionIDGenerator struct {
	last atomic.Uint64
}

// Next returns the next id.
func (g *TransactionIDGenerator) Next() uint64 {
	return g.last.Add(1)
}

// Last returns the most recently issued id, or 0 if none.
func (g *TransactionIDGenerator) Last() uint64 {
	return g.last.Load()
}
