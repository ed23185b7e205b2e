package wifi

// Signal and channel conversions shared by every platform driver. They are
// defined once here so the drivers cannot drift apart on the math.

// SignalQuality buckets a dBm reading into a human label.
func SignalQuality(dbm int) string {
	switch {
	case dbm >= -50:
		return "excellent"
	case dbm >= -60:
		return "good"
	case dbm >= -70:
		return "fair"
	case dbm >= -80:
		return "weak"
	default:
		return "poor"
	}
}

// DBmToPercent maps a dBm reading onto 0..100: 100 at -50 dBm and above,
// 0 at -100 dBm and below, linear in between.
func DBmToPercent(dbm int) int {
	switch {
	case dbm >= -50:
		return 100
	case dbm <= -100:
		return 0
	default:
		return 2 * (dbm + 100)
	}
}

// PercentToDBm is the inverse of DBmToPercent. The conversion is lossy:
// values only round-trip to within 1 dBm because percent is an integer.
func PercentToDBm(percent int) int {
	return (percent / 2) - 100
}

// ChannelFromFrequency derives the 802.11 channel number from a frequency
// in MHz. Frequencies below 3000 MHz are treated as 2.4 GHz band.
func ChannelFromFrequency(freq int) int {
	if freq <= 0 {
		return 0
	}
	if freq < 3000 {
		return (freq - 2407) / 5
	}
	return (freq - 5000) / 5
}

// FrequencyFromChannel derives the center frequency in MHz from a channel
// number. Channels 1-14 are 2.4 GHz, everything above is 5 GHz.
func FrequencyFromChannel(ch int) int {
	if ch <= 0 {
		return 0
	}
	if ch <= 14 {
		return 2412 + (ch-1)*5
	}
	return 5000 + ch*5
}

// FrequencyBand names the band a frequency belongs to.
func FrequencyBand(freq int) string {
	if freq <= 0 {
		return "unknown"
	}
	if freq < 3000 {
		return "2.4 GHz"
	}
	return "5 GHz"
}
