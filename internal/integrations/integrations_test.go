package integrations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecentWindow_Prior(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	w := RecentWindow(now, 0)

	assert.Equal(t, now.Add(-DefaultWindow), w.From)
	assert.Equal(t, now, w.To)

	p := w.Prior()
	assert.Equal(t, w.From, p.To)
	assert.Equal(t, now.Add(-2*DefaultWindow), p.From)

	assert.True(t, w.Contains(w.From))
	assert.False(t, w.Contains(w.To))
	assert.True(t, p.Contains(w.From.Add(-time.Second)))
}

func TestRevenue_Growth(t *testing.T) {
	tests := []struct {
		name string
		rev  Revenue
		want float64
	}{
		{name: "no prior", rev: Revenue{Total: 500}, want: 0},
		{name: "up", rev: Revenue{Total: 150, PriorTotal: 100}, want: 50},
		{name: "down", rev: Revenue{Total: 75, PriorTotal: 100}, want: -25},
		{name: "rounded", rev: Revenue{Total: 100, PriorTotal: 300}, want: -66.67},
		{name: "clamped", rev: Revenue{Total: 100000, PriorTotal: 1}, want: 999.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.rev.Growth(), 1e-9)
		})
	}
}

func TestFromMinor(t *testing.T) {
	assert.Equal(t, 12.34, FromMinor(1234))
	assert.Equal(t, 0.0, FromMinor(0))
}
