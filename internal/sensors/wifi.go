package sensors

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"sysmetryd/internal/model"
)

// WifiSensor obtains wireless link info by invoking the OS's wireless
// status command and parsing its text output (§4.A). The actual process
// spawn is platform-specific (wifi_windows.go runs `netsh wlan show
// interfaces` with console-window creation suppressed; wifi_other.go is a
// POSIX stub per the cross-platform Non-goal).
type WifiSensor struct {
	run func() ([]byte, error)
}

func NewWifiSensor() *WifiSensor {
	return &WifiSensor{run: runWirelessStatusCommand}
}

func (s *WifiSensor) Name() string { return "wifi" }

// Collect runs the platform command and parses its output. Absence (nil,
// false) is returned on any failure, never an error, per §4.A.
func (s *WifiSensor) Collect() (model.WifiInfoExt, bool) {
	raw, err := s.run()
	if err != nil || len(raw) == 0 {
		return model.WifiInfoExt{}, false
	}
	text := decodeCommandOutput(raw)
	return parseWirelessStatus(text)
}

// decodeCommandOutput tries UTF-8 first, then the legacy multi-byte code
// page (GBK, covering the Chinese localization referenced in §4.A), then
// falls back to a lossy UTF-8 coercion so parsing never panics on
// undecodable bytes.
func decodeCommandOutput(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	if decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw); err == nil && utf8.Valid(decoded) {
		return string(decoded)
	}
	if decoded, err := unicode.UTF8.NewDecoder().Bytes(raw); err == nil {
		return string(decoded)
	}
	return strings.ToValidUTF8(string(raw), "")
}

// keyAliases maps each logical field to its recognized English and
// Chinese localized label prefixes, matched case-insensitively. Because
// "ssid" is a substring of "bssid", parseWirelessStatus tests the bssid
// aliases first and excludes them from the ssid case, so "BSSID" is
// never mistaken for "SSID" (§4.A).
var keyAliases = map[string][]string{
	"bssid":    {"bssid"},
	"ssid":     {"ssid"},
	"signal":   {"signal", "信号"},
	"channel":  {"channel", "信道"},
	"radio":    {"radio type", "无线电类型"},
	"band":     {"band", "频带"},
	"rx_rate":  {"receive rate", "接收速率"},
	"tx_rate":  {"transmit rate", "传输速率"},
}

func parseWirelessStatus(text string) (model.WifiInfoExt, bool) {
	var info model.WifiInfoExt
	found := false

	scanner := bufio.NewScanner(bytes.NewReader([]byte(text)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		val := strings.TrimSpace(line[idx+1:])
		if val == "" {
			continue
		}

		switch {
		case matchesAlias(key, "bssid"):
			info.BSSID = val
			found = true
		case matchesAlias(key, "ssid") && !matchesAlias(key, "bssid"):
			info.SSID = val
			found = true
		case matchesAlias(key, "signal"):
			if pct, ok := parsePercent(val); ok {
				info.SignalPct = pct
				found = true
			}
		case matchesAlias(key, "channel"):
			if ch, err := strconv.Atoi(val); err == nil {
				info.Channel = ch
			}
		case matchesAlias(key, "radio"):
			info.Radio = val
		case matchesAlias(key, "band"):
			info.Band = val
		case matchesAlias(key, "rx_rate"):
			if v, ok := parseMbps(val); ok {
				info.RxMbps = v
				info.LinkMbps = v
			}
		case matchesAlias(key, "tx_rate"):
			if v, ok := parseMbps(val); ok {
				info.TxMbps = v
			}
		}
	}

	if found && info.SignalPct > 0 {
		info.RSSIdBm = model.EstimateRSSI(info.SignalPct)
		info.EstimatedRSSI = true
	}

	return info, found
}

func matchesAlias(key, field string) bool {
	for _, alias := range keyAliases[field] {
		if strings.Contains(key, alias) {
			return true
		}
	}
	return false
}

func parsePercent(s string) (int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseMbps(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
