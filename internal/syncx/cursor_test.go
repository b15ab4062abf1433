package syncx

import "testing"

func TestMaxMs(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		want int64
	}{
		{"a greater", 10, 5, 10},
		{"b greater", 5, 10, 10},
		{"equal", 7, 7, 7},
		{"negative values", -5, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxMs(tt.a, tt.b); got != tt.want {
				t.Errorf("MaxMs(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRFC3339_FormatsUTC(t *testing.T) {
	// 2024-01-15T00:00:00Z in Unix milliseconds.
	const ms = 1705276800000
	got := RFC3339(ms)
	want := "2024-01-15T00:00:00Z"
	if got[:len(want)] != want {
		t.Errorf("RFC3339(%d) = %q, want prefix %q", ms, got, want)
	}
}

func TestNowMs_Monotonic(t *testing.T) {
	a := NowMs()
	b := NowMs()
	if b < a {
		t.Errorf("NowMs() went backwards: %d then %d", a, b)
	}
}
