package engine

import "time"

// TimeHandler tracks the wall-clock budget of one search.
type TimeHandler struct {
	start       time.Time
	timeForMove time.Time
}

func newTimeHandler(budget time.Duration) TimeHandler {
	now := time.Now()
	return TimeHandler{start: now, timeForMove: now.Add(budget)}
}

// unlimited never runs out.
func unlimited() TimeHandler { return TimeHandler{start: time.Now()} }

/*
  - True if we're out of time
  - False if we still got time
*/
func (th *TimeHandler) TimeStatus() bool {
	return !th.timeForMove.IsZero() && th.timeForMove.Before(time.Now())
}

func (th *TimeHandler) Elapsed() time.Duration { return time.Since(th.start) }

// MoveTime picks a budget from UCI clock parameters: a fixed movetime wins,
// otherwise a fortieth of the remaining time plus most of the increment.
func MoveTime(movetime, remaining, increment time.Duration) time.Duration {
	const (
		overhead = 30 * time.Millisecond
		minMove  = 5 * time.Millisecond
	)
	if movetime > 0 {
		return movetime
	}
	if remaining <= 0 {
		return 0
	}
	budget := remaining/40 + increment*9/10
	if ceiling := remaining * 7 / 10; budget > ceiling {
		budget = ceiling
	}
	if budget > remaining-overhead {
		budget = remaining - overhead
	}
	if budget < minMove {
		budget = minMove
	}
	return budget
}
