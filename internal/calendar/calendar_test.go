package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) Date {
	t.Helper()
	d, err := Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestProject(t *testing.T) {
	start := mustParse(t, "2024-01-01")

	cases := []struct {
		offset float64
		want   string
	}{
		{0, "2024-01-01"},
		{5, "2024-01-06"},
		{2.9, "2024-01-03"},
		{31, "2024-02-01"},
		{60, "2024-03-01"}, // leap year
	}
	for _, c := range cases {
		if got := Project(start, c.offset).String(); got != c.want {
			t.Errorf("Project(+%g): expected %s, got %s", c.offset, c.want, got)
		}
	}

	if start.String() != "2024-01-01" {
		t.Errorf("start date was modified: %s", start)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "2024/01/01", "01-02-2024", "2024-13-01"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestFromTime_DropsClock(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	d := FromTime(time.Date(2024, 6, 3, 23, 30, 0, 0, loc))
	if d.String() != "2024-06-03" {
		t.Errorf("expected 2024-06-03, got %s", d)
	}
	if h := d.Time().Hour(); h != 0 {
		t.Errorf("expected midnight, got hour %d", h)
	}
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Start Date `json:"start"`
	}

	data, err := json.Marshal(payload{Start: NewDate(2024, time.June, 3)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"start":"2024-06-03"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"start":"2025-12-31"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Start.AddDays(1).String() != "2026-01-01" {
		t.Errorf("unexpected date after unmarshal: %s", p.Start)
	}

	if err := json.Unmarshal([]byte(`{"start":"tomorrow"}`), &p); err == nil {
		t.Error("expected error for invalid date")
	}
}
