package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// ParseCron parses a five-field cron expression evaluated in UTC.
// Timezone prefixes are rejected so a schedule means the same thing on
// every machine that opens the collection.
func ParseCron(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("schedule: cron expression is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("schedule: cron expression must be UTC-only (timezone prefixes are not allowed)")
	}

	parsed, err := cronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("schedule: invalid cron expression %q: %w", expr, err)
	}
	return parsed, nil
}

// NextRun returns the first UTC fire time of expr strictly after now.
func NextRun(expr string, now time.Time) (time.Time, error) {
	parsed, err := ParseCron(expr)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.Next(now.UTC()), nil
}
