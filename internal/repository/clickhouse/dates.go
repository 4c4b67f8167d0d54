package clickhouse

import (
	"time"

	"cloud.google.com/go/civil"
)

// ClickHouse Date columns travel as time.Time through the driver.
// All conversions pin UTC so a date never shifts across a midnight boundary.

func dateToTime(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func timeToDate(t time.Time) civil.Date {
	return civil.DateOf(t.UTC())
}
