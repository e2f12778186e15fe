package cache

import (
	"time"
)

// TimeUntilNextClose は now から次の米国市場の引け後（ニューヨーク時間 16:30）までの期間を返します。
// 日足はこの時刻まで変化しないため、キャッシュTTLに使います。週末はスキップします。
func TimeUntilNextClose(now time.Time) time.Duration {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	local := now.In(loc)

	next := time.Date(local.Year(), local.Month(), local.Day(), 16, 30, 0, 0, loc)
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(now)
}
