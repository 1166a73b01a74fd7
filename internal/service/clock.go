package service

import "time"

// Clock is the wall-clock source for ledger timestamps.
type Clock func() time.Time

func NewClock() Clock {
	return func() time.Time { return time.Now().UTC() }
}
