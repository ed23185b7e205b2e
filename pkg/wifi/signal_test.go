package wifi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalQuality(t *testing.T) {
	tests := []struct {
		name string
		dbm  int
		want string
	}{
		{"strong ap", -42, "excellent"},
		{"boundary excellent", -50, "excellent"},
		{"boundary good", -60, "good"},
		{"typical neighbor", -65, "fair"},
		{"boundary fair", -70, "fair"},
		{"boundary weak", -80, "weak"},
		{"far away", -92, "poor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignalQuality(tt.dbm))
		})
	}
}

func TestDBmToPercent(t *testing.T) {
	tests := []struct {
		dbm  int
		want int
	}{
		{-30, 100},
		{-50, 100},
		{-60, 80},
		{-75, 50},
		{-100, 0},
		{-110, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DBmToPercent(tt.dbm), "dbm=%d", tt.dbm)
	}
}

// Percent is an integer, so the conversion pair is lossy. The contract is
// "within 1 dBm", not exact equality.
func TestPercentToDBmRoundTrip(t *testing.T) {
	for dbm := -99; dbm <= -51; dbm++ {
		back := PercentToDBm(DBmToPercent(dbm))
		assert.InDelta(t, dbm, back, 1, "dbm=%d back=%d", dbm, back)
	}

	assert.Equal(t, -50, PercentToDBm(DBmToPercent(-50)))
	assert.Equal(t, -100, PercentToDBm(DBmToPercent(-100)))
}

func TestChannelFrequencyInverse(t *testing.T) {
	// 2.4 GHz: channel 6 sits at 2437 MHz.
	assert.Equal(t, 2437, FrequencyFromChannel(6))
	assert.Equal(t, 6, ChannelFromFrequency(2437))

	// 5 GHz: channel 40.
	assert.Equal(t, 5200, FrequencyFromChannel(40))
	assert.Equal(t, 40, ChannelFromFrequency(5200))
}

func TestChannelFromFrequencyEdges(t *testing.T) {
	assert.Equal(t, 0, ChannelFromFrequency(0))
	assert.Equal(t, 0, ChannelFromFrequency(-1))
	assert.Equal(t, 1, ChannelFromFrequency(2412))
	assert.Equal(t, 36, ChannelFromFrequency(5180))
}

func TestFrequencyBand(t *testing.T) {
	assert.Equal(t, "2.4 GHz", FrequencyBand(2437))
	assert.Equal(t, "5 GHz", FrequencyBand(5200))
	assert.Equal(t, "unknown", FrequencyBand(0))
}
