package miner

import "time"

// calcOffset computes the delay scheduleMining arms before firing a block
// generation task: offset = max(minimal, ceil(ts/1000)*1000 - now). Aligning
// to the next whole second at or after ts keeps forge attempts from landing
// mid-second; flooring at minimal guarantees a task is never armed with a
// zero or negative delay.
func calcOffset(minimal time.Duration, tsMs, nowMs uint64) time.Duration {
	ceilMs := ((tsMs + 999) / 1000) * 1000

	var diffMs uint64
	if ceilMs > nowMs {
		diffMs = ceilMs - nowMs
	}

	offset := time.Duration(diffMs) * time.Millisecond
	if offset < minimal {
		return minimal
	}
	return offset
}
