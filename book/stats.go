package book

import (
	"time"

	"github.com/bookworks/rebook/types"
)

// Stats carries the per-book processing counters. They are updated on the
// processing path without locking; readers on other goroutines must go
// through Stats() which returns a copy by value.
type Stats struct {
	RecordsProcessed uint64
	TradesProcessed  uint64
	OrdersAdded      uint64
	OrdersCancelled  uint64

	TotalProcessingTime   time.Duration
	AverageProcessingTime time.Duration
}

func (s *Stats) update(action types.Action, elapsed time.Duration) {
	s.RecordsProcessed++
	s.TotalProcessingTime += elapsed
	s.AverageProcessingTime = s.TotalProcessingTime / time.Duration(s.RecordsProcessed)

	switch action {
	case types.ActionTrade:
		s.TradesProcessed++
	case types.ActionAdd:
		s.OrdersAdded++
	case types.ActionCancel:
		s.OrdersCancelled++
	}
}

func (s Stats) add(other Stats) Stats {
	out := Stats{
		RecordsProcessed:    s.RecordsProcessed + other.RecordsProcessed,
		TradesProcessed:     s.TradesProcessed + other.TradesProcessed,
		OrdersAdded:         s.OrdersAdded + other.OrdersAdded,
		OrdersCancelled:     s.OrdersCancelled + other.OrdersCancelled,
		TotalProcessingTime: s.TotalProcessingTime + other.TotalProcessingTime,
	}
	if out.RecordsProcessed > 0 {
		out.AverageProcessingTime = out.TotalProcessingTime / time.Duration(out.RecordsProcessed)
	}
	return out
}
