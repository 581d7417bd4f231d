package auction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRules_Extend(t *testing.T) {
	start := time.Date(2025, 10, 21, 19, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	tests := []struct {
		name       string
		rules      func(Rules) Rules
		now        time.Time
		extensions int
		wantEnd    time.Time
		wantExt    bool
	}{
		{
			name:    "outside the window",
			now:     end.Add(-5 * time.Minute),
			wantEnd: end,
		},
		{
			name:    "inside the window",
			now:     end.Add(-time.Minute),
			wantEnd: end.Add(4 * time.Minute),
			wantExt: true,
		},
		{
			name:       "extension cap reached",
			rules:      func(r Rules) Rules { r.MaxExtensions = 3; return r },
			now:        end.Add(-time.Minute),
			extensions: 3,
			wantEnd:    end,
		},
		{
			name:    "hard close bounds the extension",
			rules:   func(r Rules) Rules { r.HardCloseAfter = 24*time.Hour + 2*time.Minute; return r },
			now:     end.Add(-time.Minute),
			wantEnd: start.Add(24*time.Hour + 2*time.Minute),
			wantExt: true,
		},
		{
			name:    "hard close already reached",
			rules:   func(r Rules) Rules { r.HardCloseAfter = 24 * time.Hour; return r },
			now:     end.Add(-time.Minute),
			wantEnd: end,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			if tt.rules != nil {
				r = tt.rules(r)
			}
			got, ext := r.extend(start, end, tt.now, tt.extensions)
			assert.Equal(t, tt.wantEnd, got)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestRules_LateBidAlwaysLeavesAFullWindow(t *testing.T) {
	r := DefaultRules()
	start := time.Date(2025, 10, 21, 19, 0, 0, 0, time.UTC)

	rapid.Check(t, func(t *rapid.T) {
		end := start.Add(r.InitialDuration)
		extensions := 0
		now := start
		steps := rapid.SliceOfN(rapid.IntRange(0, 600), 1, 40).Draw(t, "steps")
		for _, sec := range steps {
			now = now.Add(time.Duration(sec) * time.Second)
			if !now.Before(end) {
				return
			}
			wasLate := end.Sub(now) < r.AntiSnipeWindow
			var ext bool
			end, ext = r.extend(start, end, now, extensions)
			if ext {
				extensions++
			}
			if wasLate && end.Before(now.Add(r.AntiSnipeWindow)) {
				t.Fatalf("late bid at %s left end %s", now, end)
			}
			if wasLate != ext {
				t.Fatalf("extension mismatch: late=%v extended=%v", wasLate, ext)
			}
		}
	})
}

func TestRules_ValidYears(t *testing.T) {
	r := DefaultRules()
	assert.False(t, r.validYears(0))
	assert.True(t, r.validYears(1))
	assert.True(t, r.validYears(3))
	assert.False(t, r.validYears(4))

	r.MaxYears = 2
	assert.False(t, r.validYears(3))
}
