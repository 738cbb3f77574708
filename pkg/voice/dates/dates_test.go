package dates

import (
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	// Wednesday, 2025-06-11.
	now := time.Date(2025, 6, 11, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		transcript string
		want       string
		wantOk     bool
	}{
		{
			name:       "today",
			transcript: "finish the report today",
			want:       "2025-06-11",
			wantOk:     true,
		},
		{
			name:       "tomorrow",
			transcript: "buy groceries tomorrow",
			want:       "2025-06-12",
			wantOk:     true,
		},
		{
			name:       "next week",
			transcript: "plan the sprint next week",
			want:       "2025-06-18",
			wantOk:     true,
		},
		{
			name:       "next month",
			transcript: "renew the license next month",
			want:       "2025-07-11",
			wantOk:     true,
		},
		{
			name:       "upcoming weekday",
			transcript: "submit the draft by friday",
			want:       "2025-06-13",
			wantOk:     true,
		},
		{
			name:       "weekday before today wraps to next week",
			transcript: "call the client on monday",
			want:       "2025-06-16",
			wantOk:     true,
		},
		{
			name:       "same weekday means next occurrence",
			transcript: "review the budget on wednesday",
			want:       "2025-06-18",
			wantOk:     true,
		},
		{
			name:       "month and day",
			transcript: "pay the invoice by december 15",
			want:       "2025-12-15",
			wantOk:     true,
		},
		{
			name:       "month and day with ordinal suffix",
			transcript: "book flights for july 3rd",
			want:       "2025-07-03",
			wantOk:     true,
		},
		{
			name:       "past month rolls to next year",
			transcript: "schedule the review for january 5",
			want:       "2026-01-05",
			wantOk:     true,
		},
		{
			name:       "weekday with punctuation",
			transcript: "deadline is Friday.",
			want:       "2025-06-13",
			wantOk:     true,
		},
		{
			name:       "no date phrase",
			transcript: "finish the report",
			want:       "",
			wantOk:     false,
		},
		{
			name:       "substring must not match as word",
			transcript: "the saturdays album",
			want:       "",
			wantOk:     false,
		},
		{
			name:       "empty transcript",
			transcript: "",
			want:       "",
			wantOk:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.transcript, now)
			if ok != tt.wantOk {
				t.Errorf("Resolve(%q) ok = %v, want %v", tt.transcript, ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.transcript, got, tt.want)
			}
		})
	}
}

func TestHasDatePhrase(t *testing.T) {
	now := time.Date(2025, 6, 11, 10, 30, 0, 0, time.UTC)

	if !HasDatePhrase("do it tomorrow", now) {
		t.Error("expected HasDatePhrase to detect 'tomorrow'")
	}
	if HasDatePhrase("do it eventually", now) {
		t.Error("expected HasDatePhrase to reject a transcript without a date phrase")
	}
}
