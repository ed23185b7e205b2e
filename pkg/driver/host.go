package driver

import (
	"os"
	"strings"
)

// osReleasePath is a variable so tests can point it at a fixture.
var osReleasePath = "/etc/os-release"

// IsSecurityDistro reports whether the host runs a security-oriented Linux
// distribution (Kali or a derivative). The Linux driver widens its
// capability set on such hosts because monitor-mode tooling ships by
// default there.
func IsSecurityDistro() bool {
	data, err := os.ReadFile(osReleasePath)
	if err != nil {
		return false
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "ID=") && !strings.HasPrefix(line, "ID_LIKE=") {
			continue
		}
		_, value, _ := strings.Cut(line, "=")
		value = strings.Trim(value, `"`)
		if strings.Contains(strings.ToLower(value), "kali") {
			return true
		}
	}
	return false
}
