package calendar

import (
	"reflect"
	"testing"
	"time"
)

func dayCells(g Grid) []Cell {
	var out []Cell
	for _, row := range g[2 : len(g)-1] {
		for _, c := range row {
			if IsDay(c.Payload) {
				out = append(out, c)
			}
		}
	}
	return out
}

func TestRenderLayout(t *testing.T) {
	g := Render(2024, time.March)

	if got := g[0]; len(got) != 1 || got[0].Label != "March 2024" || got[0].Payload != Ignore {
		t.Fatalf("label row = %+v", got)
	}
	if len(g[1]) != 7 || g[1][0].Label != "Mo" || g[1][6].Label != "Su" {
		t.Fatalf("weekday row = %+v", g[1])
	}
	for _, row := range g[2 : len(g)-1] {
		if len(row) != 7 {
			t.Fatalf("week row has %d cells", len(row))
		}
	}
	// 1 March 2024 is a Friday.
	first := g[2]
	for i := 0; i < 4; i++ {
		if first[i].Payload != Ignore || first[i].Label != " " {
			t.Fatalf("cell %d should be blank: %+v", i, first[i])
		}
	}
	if first[4].Label != "1" || first[4].Payload != "calendar-day-2024-3-1" {
		t.Fatalf("first day cell = %+v", first[4])
	}
	nav := g[len(g)-1]
	if len(nav) != 2 || nav[0].Payload != "calendar-month-2024-2" || nav[1].Payload != "calendar-month-2024-4" {
		t.Fatalf("nav row = %+v", nav)
	}
	if n := len(dayCells(g)); n != 31 {
		t.Fatalf("days = %d, want 31", n)
	}
}

func TestRenderFebruary(t *testing.T) {
	leap := dayCells(Render(2024, time.February))
	if len(leap) != 29 || leap[28].Payload != "calendar-day-2024-2-29" {
		t.Fatalf("leap february: %d days, last %+v", len(leap), leap[len(leap)-1])
	}
	// 29 Feb 2024 is a Thursday, column index 3.
	g := Render(2024, time.February)
	last := g[len(g)-2]
	if last[3].Label != "29" {
		t.Fatalf("29th misplaced: %+v", last)
	}
	if n := len(dayCells(Render(2023, time.February))); n != 28 {
		t.Fatalf("2023 february has %d days", n)
	}
}

func TestRenderAllMonthsAligned(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		g := Render(2025, m)
		cells := dayCells(g)
		want := time.Date(2025, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if len(cells) != want {
			t.Fatalf("%s: %d days, want %d", m, len(cells), want)
		}
		for r, row := range g[2 : len(g)-1] {
			for col, c := range row {
				if !IsDay(c.Payload) {
					continue
				}
				d, err := ParseDay(c.Payload)
				if err != nil {
					t.Fatalf("%s: %v", m, err)
				}
				if got := (int(d.Weekday()) + 6) % 7; got != col {
					t.Fatalf("%s row %d: day %d in column %d, want %d", m, r, d.Day(), col, got)
				}
			}
		}
	}
}

func TestNavigationRoundTrip(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
	}{
		{2024, time.January},
		{2024, time.June},
		{2024, time.December},
	}
	for _, tc := range cases {
		orig := Render(tc.year, tc.month)
		ny, nm, err := ParseMonth(orig[len(orig)-1][1].Payload)
		if err != nil {
			t.Fatal(err)
		}
		next := Render(ny, nm)
		py, pm, err := ParseMonth(next[len(next)-1][0].Payload)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(Render(py, pm), orig) {
			t.Fatalf("round trip from %d-%d returned %d-%d", tc.year, tc.month, py, pm)
		}
	}
}

func TestYearRollover(t *testing.T) {
	if y, m := Prev(2024, time.January); y != 2023 || m != time.December {
		t.Fatalf("Prev = %d-%d", y, m)
	}
	if y, m := Next(2024, time.December); y != 2025 || m != time.January {
		t.Fatalf("Next = %d-%d", y, m)
	}
	nav := Render(2024, time.December)
	if p := nav[len(nav)-1][1].Payload; p != "calendar-month-2025-1" {
		t.Fatalf("next payload = %q", p)
	}
}

func TestParsePayloads(t *testing.T) {
	d, err := ParseDay("calendar-day-2024-3-15")
	if err != nil || d.Format("2006-01-02") != "2024-03-15" {
		t.Fatalf("ParseDay = %v, %v", d, err)
	}
	bad := []string{
		"calendar-day-2024-3",
		"calendar-day-2024-13-1",
		"calendar-day-2023-2-29",
		"calendar-day-2024-x-1",
		"calendar-month-2024-3",
		"ignore",
	}
	for _, p := range bad {
		if _, err := ParseDay(p); err == nil {
			t.Fatalf("ParseDay(%q) should fail", p)
		}
	}
	if _, _, err := ParseMonth("calendar-month-2024-0"); err == nil {
		t.Fatal("month 0 should fail")
	}
	if _, _, err := ParseMonth("calendar-month-2024-3-1"); err == nil {
		t.Fatal("extra field should fail")
	}
}
