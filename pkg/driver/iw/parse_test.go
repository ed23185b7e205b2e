package iw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DiyarNzar/Wifi-tester-pro/pkg/wifi"
)

const iwDevOutput = `phy#0
	Interface wlan0
		ifindex 3
		wdev 0x1
		addr aa:bb:cc:dd:ee:ff
		ssid HomeNet
		type managed
		channel 6 (2437 MHz), width: 20 MHz, center1: 2437 MHz
		txpower 20.00 dBm
phy#1
	Interface wlan1
		ifindex 4
		wdev 0x100000001
		addr 11:22:33:44:55:66
		type monitor
		channel 36 (5180 MHz), width: 20 MHz, center1: 5180 MHz
		txpower 22.00 dBm
`

const iwScanOutput = `BSS aa:bb:cc:dd:ee:ff(on wlan0) -- associated
	last seen: 304.132s [boottime]
	TSF: 4916635185734 usec (56d, 21:43:55)
	freq: 2437
	beacon interval: 100 TUs
	capability: ESS Privacy ShortSlotTime (0x0411)
	signal: -55.00 dBm
	SSID: CoffeeShop
	RSN:	 * Version: 1
		 * Group cipher: CCMP
		 * Pairwise ciphers: CCMP
		 * Authentication suites: PSK
	WPS:	 * Version: 1.0
BSS 11:22:33:44:55:66(on wlan0)
	freq: 5180
	capability: ESS (0x0401)
	signal: -71.00 dBm
	SSID: Library5G
`

const iwScanWEPOutput = `BSS de:ad:be:ef:00:01(on wlan0)
	freq: 2412
	capability: ESS Privacy ShortSlotTime (0x0411)
	signal: -62.00 dBm
	SSID: LegacyNet
`

const iwScanHiddenOutput = `BSS de:ad:be:ef:00:02(on wlan0)
	freq: 2462
	capability: ESS Privacy (0x0411)
	SSID:
	RSN:	 * Version: 1
		 * Group cipher: TKIP
		 * Pairwise ciphers: TKIP CCMP
`

const iwlistOutput = `wlan0     Scan completed :
          Cell 01 - Address: AA:BB:CC:DD:EE:FF
                    Channel:6
                    Frequency:2.437 GHz (Channel 6)
                    Quality=61/70  Signal level=-49 dBm
                    Encryption key:on
                    ESSID:"CoffeeShop"
                    IE: IEEE 802.11i/WPA2 Version 1
                        Group Cipher : CCMP
                        Pairwise Ciphers (1) : CCMP
          Cell 02 - Address: 66:55:44:33:22:11
                    Channel:11
                    Frequency:2.462 GHz (Channel 11)
                    Quality=40/70  Signal level=-70 dBm
                    Encryption key:off
                    ESSID:"FreeWifi"
`

const iwconfigOutput = `wlan0     IEEE 802.11  ESSID:"HomeNet"
          Mode:Managed  Frequency:2.437 GHz  Access Point: AA:BB:CC:DD:EE:FF
          Bit Rate=144.4 Mb/s   Tx-Power=20 dBm
          Retry short limit:7   RTS thr:off   Fragment thr:off
          Power Management:on
          Link Quality=61/70  Signal level=-49 dBm
          Rx invalid nwid:0  Rx invalid crypt:0  Rx invalid frag:0
`

const iwconfigNotAssociated = `wlan0     IEEE 802.11  ESSID:off/any
          Mode:Managed  Access Point: Not-Associated   Tx-Power=20 dBm
`

func TestParseIWDev(t *testing.T) {
	ifaces := parseIWDev(iwDevOutput)
	require.Len(t, ifaces, 2)

	assert.Equal(t, "wlan0", ifaces[0].Name)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", ifaces[0].MAC)
	assert.Equal(t, wifi.ModeManaged, ifaces[0].Mode)
	assert.Equal(t, 6, ifaces[0].Channel)
	assert.Equal(t, 2437, ifaces[0].Frequency)
	assert.Equal(t, 20, ifaces[0].TxPower)

	assert.Equal(t, "wlan1", ifaces[1].Name)
	assert.Equal(t, wifi.ModeMonitor, ifaces[1].Mode)
	assert.Equal(t, 36, ifaces[1].Channel)
}

func TestParseIWDevEmpty(t *testing.T) {
	assert.Empty(t, parseIWDev(""))
	assert.Empty(t, parseIWDev("phy#0\n"))
}

func TestParseIWScanTwoBSSBlocks(t *testing.T) {
	nets := parseIWScan(iwScanOutput)
	require.Len(t, nets, 2)

	byBSSID := map[string]wifi.NetworkInfo{}
	for _, n := range nets {
		byBSSID[n.BSSID] = n
	}
	require.Len(t, byBSSID, 2, "records must be keyed by distinct BSSIDs")

	coffee := byBSSID["AA:BB:CC:DD:EE:FF"]
	assert.Equal(t, "CoffeeShop", coffee.SSID)
	assert.Equal(t, -55, coffee.Signal)
	assert.Equal(t, 2437, coffee.Frequency)
	assert.Equal(t, 6, coffee.Channel, "channel derived from frequency")
	assert.Equal(t, "WPA2", coffee.Security)
	assert.Equal(t, "CCMP", coffee.Encryption)
	assert.True(t, coffee.WPS)
	assert.False(t, coffee.Hidden)

	lib := byBSSID["11:22:33:44:55:66"]
	assert.Equal(t, "Library5G", lib.SSID)
	assert.Equal(t, -71, lib.Signal)
	assert.Equal(t, 36, lib.Channel)
	assert.Equal(t, "Open", lib.Security, "no Privacy bit and no suite means open")
	assert.False(t, lib.WPS)
}

func TestParseIWScanPrivacyWithoutSuiteIsWEP(t *testing.T) {
	nets := parseIWScan(iwScanWEPOutput)
	require.Len(t, nets, 1)
	assert.Equal(t, "WEP", nets[0].Security)
	assert.Equal(t, -62, nets[0].Signal)
}

func TestParseIWScanHiddenAndDefaults(t *testing.T) {
	nets := parseIWScan(iwScanHiddenOutput)
	require.Len(t, nets, 1)

	n := nets[0]
	assert.True(t, n.Hidden)
	assert.Equal(t, -80, n.Signal, "missing signal takes the default")
	assert.Equal(t, "WPA2", n.Security)
	assert.Contains(t, n.Encryption, "TKIP")
	assert.Equal(t, 11, n.Channel)
}

func TestParseIWScanGarbage(t *testing.T) {
	assert.Empty(t, parseIWScan(""))
	assert.Empty(t, parseIWScan("command failed: Operation not permitted (-1)"))
}

func TestParseIWListScan(t *testing.T) {
	nets := parseIWListScan(iwlistOutput)
	require.Len(t, nets, 2)

	assert.Equal(t, "AA:BB:CC:DD:EE:FF", nets[0].BSSID)
	assert.Equal(t, "CoffeeShop", nets[0].SSID)
	assert.Equal(t, -49, nets[0].Signal)
	assert.Equal(t, 6, nets[0].Channel)
	assert.Equal(t, 2437, nets[0].Frequency)
	assert.Equal(t, "WPA2", nets[0].Security)
	assert.Equal(t, "CCMP", nets[0].Encryption)

	assert.Equal(t, "66:55:44:33:22:11", nets[1].BSSID)
	assert.Equal(t, "FreeWifi", nets[1].SSID)
	assert.Equal(t, "Open", nets[1].Security, "encryption key off means open")
	assert.Equal(t, 11, nets[1].Channel)
}

func TestParseIWConfig(t *testing.T) {
	conn := parseIWConfig(iwconfigOutput)
	require.NotNil(t, conn)

	assert.Equal(t, "HomeNet", conn.SSID)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", conn.BSSID)
	assert.Equal(t, 2437, conn.Frequency)
	assert.Equal(t, 6, conn.Channel)
	assert.Equal(t, -49, conn.Signal)
}

func TestParseIWConfigNotAssociated(t *testing.T) {
	assert.Nil(t, parseIWConfig(iwconfigNotAssociated))
	assert.Nil(t, parseIWConfig(""))
}

func TestParseIWVersion(t *testing.T) {
	assert.Equal(t, "5.16", parseIWVersion("iw version 5.16\n"))
	assert.Equal(t, "", parseIWVersion(""))
}
