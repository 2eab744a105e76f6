package normalize

import "testing"

func TestDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"utc crossing midnight", "2023-10-15T15:00:00.000Z", "2023-10-16"},
		{"utc same day", "2023-10-15T00:30:00.000Z", "2023-10-15"},
		{"utc just before shift", "2023-10-15T14:59:59Z", "2023-10-15"},
		{"utc without seconds", "2023-12-31T20:00Z", "2024-01-01"},
		{"offset without Z", "2023-10-15T23:00:00+09:00", "2023-10-15"},
		{"local timestamp", "2023-10-15T23:00:00", "2023-10-15"},
		{"unparseable utc falls back", "garbageTvalueZ", "garbage"},
		{"plain date", "2023-10-15", "2023-10-15"},
		{"dotted date passes through", "2023.10.15", "2023.10.15"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Date(tt.raw); got != tt.expected {
				t.Errorf("Date(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestFloor(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"1", "1층"},
		{"1F", "1층"},
		{"1f", "1층"},
		{"1 층", "1층"},
		{" 1층 ", "1층"},
		{"본관 1층", "1층"},
		{"2", "2층"},
		{"2F", "2층"},
		{"2 층", "2층"},
		{"3F", "3F"},
		{" 3f ", "3f"},
		{"지하", "지하"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Floor(tt.raw); got != tt.expected {
			t.Errorf("Floor(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}
