package challenge

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// The traits a browser would feed the gate's fingerprinting routine. They
// are fixed so the watcher always presents the same synthetic client.
var fingerprintTraits = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	"it-IT",
	"MacIntel",
	"Europe/Rome",
	"1512x982x30",
}

// Fingerprint returns the synthetic client-identity token submitted
// alongside the challenge cookie. It is derived only from the fixed traits
// above, never from page content, so it is stable across runs.
func Fingerprint() string {
	h := fnv.New32a()
	h.Write([]byte(strings.Join(fingerprintTraits, "|")))
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}
