package normalize

import (
	"strings"
	"time"
)

// BusinessOffset is the fixed offset of the timezone the sheet's dates were
// entered in (KST).
const BusinessOffset = 9 * time.Hour

var utcLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// Date converts a raw date cell to YYYY-MM-DD.
//
// A UTC instant ("...T...Z") is shifted by BusinessOffset and truncated to the
// shifted calendar day. Any other value containing a T is cut at the first T.
// Plain values pass through unchanged.
func Date(raw string) string {
	if !strings.Contains(raw, "T") {
		return raw
	}
	if strings.HasSuffix(raw, "Z") {
		if t, ok := parseUTC(raw); ok {
			return t.UTC().Add(BusinessOffset).Format(time.DateOnly)
		}
	}
	return raw[:strings.Index(raw, "T")]
}

func parseUTC(raw string) (time.Time, bool) {
	for _, layout := range utcLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
