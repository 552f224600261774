/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package availability

import (
	"reflect"
	"sort"
	"testing"
)

func slotsByDay(slots []TimeSlot) map[string]TimeSlot {
	m := make(map[string]TimeSlot, len(slots))
	for _, s := range slots {
		m[s.Day] = s
	}
	return m
}

func TestParseDefaultFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty string", text: ""},
		{name: "no durations", text: "I like movies on monday"},
		{name: "garbage", text: "qwerty asdf !!"},
		{name: "duration but no day anywhere", text: "free for 2 hours"},
		{name: "zero duration", text: "0 hours on monday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := Parse(tt.text)
			if len(slots) != 1 {
				t.Fatalf("Parse(%q) = %d slots, want 1", tt.text, len(slots))
			}
			want := TimeSlot{Day: "Friday", StartHour: 18, AvailableMinutes: 120}
			if slots[0] != want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, slots[0], want)
			}
		})
	}
}

func TestParseScenarioMultiDay(t *testing.T) {
	text := "I'm free after 8pm for 2 hours on Monday and 3 hours on Saturday"
	slots := Parse(text)

	if len(slots) != 2 {
		t.Fatalf("Parse() = %d slots, want 2: %+v", len(slots), slots)
	}

	byDay := slotsByDay(slots)
	monday, ok := byDay["Monday"]
	if !ok {
		t.Fatalf("no Monday slot in %+v", slots)
	}
	if monday.StartHour != 20 || monday.AvailableMinutes != 120 {
		t.Errorf("Monday = %+v, want start 20 / 120 min", monday)
	}

	saturday, ok := byDay["Saturday"]
	if !ok {
		t.Fatalf("no Saturday slot in %+v", slots)
	}
	if saturday.AvailableMinutes != 180 {
		t.Errorf("Saturday minutes = %d, want 180", saturday.AvailableMinutes)
	}
}

func TestParseIdempotent(t *testing.T) {
	text := "2 hours on monday, 90 minutes on saturday after 7pm"
	first := Parse(text)
	second := Parse(text)

	sort.Slice(first, func(i, j int) bool { return first[i].Day < first[j].Day })
	sort.Slice(second, func(i, j int) bool { return second[i].Day < second[j].Day })

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse not idempotent: %+v vs %+v", first, second)
	}
}

func TestParseMergesSameDay(t *testing.T) {
	// Two clauses naming the same day: max duration wins, last start hour
	// wins.
	text := "free for 1 hour on monday after 6pm, and 3 hours on monday after 9pm"
	slots := Parse(text)

	if len(slots) != 1 {
		t.Fatalf("Parse() = %d slots, want 1: %+v", len(slots), slots)
	}
	if slots[0].AvailableMinutes != 180 {
		t.Errorf("merged minutes = %d, want 180", slots[0].AvailableMinutes)
	}
	if slots[0].StartHour != 21 {
		t.Errorf("merged start hour = %d, want 21 (last write wins)", slots[0].StartHour)
	}
}

func TestParseDayFallbackToWholeText(t *testing.T) {
	// First clause has the day, second only a duration; the second clause
	// falls back to days named anywhere in the text.
	text := "on sunday I watch movies, free for 2 hours"
	slots := Parse(text)

	if len(slots) != 1 {
		t.Fatalf("Parse() = %d slots, want 1: %+v", len(slots), slots)
	}
	if slots[0].Day != "Sunday" || slots[0].AvailableMinutes != 120 {
		t.Errorf("slot = %+v, want Sunday / 120", slots[0])
	}
}

func TestExtractDuration(t *testing.T) {
	tests := []struct {
		name   string
		clause string
		want   int
	}{
		{name: "hours", clause: "free for 2 hours", want: 120},
		{name: "fractional hours", clause: "2.5 hours tonight", want: 150},
		{name: "minutes", clause: "90 minutes", want: 90},
		{name: "short minutes", clause: "45 min", want: 45},
		{name: "compact mixed", clause: "1h30m", want: 90},
		{name: "spaced mixed", clause: "1 hour 30 minutes", want: 90},
		{name: "hour abbreviations", clause: "2 hrs", want: 120},
		{name: "no duration", clause: "on monday evening", want: 0},
		{name: "bare number", clause: "free for 2", want: 0},
		{name: "unparseable mixed contributes hour part only", clause: "2h 30", want: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractDuration(tt.clause); got != tt.want {
				t.Errorf("extractDuration(%q) = %d, want %d", tt.clause, got, tt.want)
			}
		})
	}
}

func TestExtractAnchorHour(t *testing.T) {
	tests := []struct {
		name   string
		clause string
		want   int
		wantOK bool
	}{
		{name: "pm", clause: "after 8pm", want: 20, wantOK: true},
		{name: "am", clause: "from 9am", want: 9, wantOK: true},
		{name: "midnight", clause: "after 12am", want: 0, wantOK: true},
		{name: "noon pm unchanged", clause: "after 12pm", want: 12, wantOK: true},
		{name: "24h clock", clause: "from 20:00", want: 20, wantOK: true},
		{name: "no anchor defaults to 18", clause: "2 hours on monday", want: 18, wantOK: false},
		{name: "out of range falls back", clause: "after 99pm", want: 18, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractAnchorHour(tt.clause)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("extractAnchorHour(%q) = (%d, %v), want (%d, %v)", tt.clause, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractDays(t *testing.T) {
	got := extractDays("maybe wednesday or friday, never monday morning")
	want := []string{"Monday", "Wednesday", "Friday"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractDays() = %v, want %v (calendar order)", got, want)
	}

	if days := extractDays("no day here"); days != nil {
		t.Errorf("extractDays() = %v, want nil", days)
	}
}

func TestRoundToFive(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{83, 85},
		{82, 80},
		{120, 120},
		{1, 0},
		{3, 5},
	}
	for _, tt := range tests {
		if got := roundToFive(tt.in); got != tt.want {
			t.Errorf("roundToFive(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
