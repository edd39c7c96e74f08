package common

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The harness watches the service's stdout: it parses PORT pairs to find out
// which ephemeral port the OS assigned and blocks until the READY marker.
const (
	ReadyMarker = "READY"
	HTTPBanner  = "Starting http server..."
	TCPBanner   = "Listening on 127.0.0.1..."
)

// WriteStartup prints the startup lines in the order the harness expects:
// banner, PORT=(nominal,actual), READY.
func WriteStartup(w io.Writer, banner string, nominal, actual int) {
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, FormatPortLine(nominal, actual))
	fmt.Fprintln(w, ReadyMarker)
}

func FormatPortLine(nominal, actual int) string {
	return fmt.Sprintf("PORT=(%d,%d)", nominal, actual)
}

// ParsePortLine reads a PORT pair, e.g. "PORT=(80,8081)" -> 80, 8081.
// Lines without a PORT= prefix return ok=false; a PORT= line that doesn't
// hold a (nominal,actual) pair is an error.
func ParsePortLine(line string) (nominal, actual int, ok bool, err error) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found || strings.TrimSpace(key) != "PORT" {
		return 0, 0, false, nil
	}
	malformed := fmt.Errorf("malformed port pair %q, expected PORT=(80,8081)", line)
	first, second, found := strings.Cut(strings.TrimSpace(value), ",")
	if !found {
		return 0, 0, false, malformed
	}
	first, hasPrefix := strings.CutPrefix(strings.TrimSpace(first), "(")
	if !hasPrefix {
		return 0, 0, false, malformed
	}
	second, hasSuffix := strings.CutSuffix(strings.TrimSpace(second), ")")
	if !hasSuffix {
		return 0, 0, false, malformed
	}
	nominal, err = strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, false, fmt.Errorf("port number %q is not a number", first)
	}
	actual, err = strconv.Atoi(strings.TrimSpace(second))
	if err != nil {
		return 0, 0, false, fmt.Errorf("port number %q is not a number", second)
	}
	return nominal, actual, true, nil
}
