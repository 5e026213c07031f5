package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatRunID returns a training run ID like "2025-01-001".
func FormatRunID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// ParseRunID parses "2025-01-001" into year, month, seq.
func ParseRunID(id string) (year, month, seq int, err error) {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid run ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in run ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month in run ID %q: %w", id, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("month %d out of range in run ID %q", month, id)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in run ID %q: %w", id, err)
	}

	return year, month, seq, nil
}

// NextRunID returns the next ID for the month of now, one past the highest
// sequence among existing IDs from that month. Unparseable IDs are ignored.
func NextRunID(existing []string, now time.Time) string {
	year, month := now.Year(), int(now.Month())
	last := 0
	for _, e := range existing {
		y, m, s, err := ParseRunID(e)
		if err != nil || y != year || m != month {
			continue
		}
		last = max(last, s)
	}
	return FormatRunID(year, month, last+1)
}
