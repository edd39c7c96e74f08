package services

import (
	"context"
	"io"
)

// Handle is a started fixture. Port returns the ephemeral port the OS
// assigned, Shutdown stops serving.
type Handle interface {
	Port() int
	Shutdown(ctx context.Context) error
}

// Info describes a fixture the harness can ask for by name. NominalPort is
// the well-known port the harness uses as the key in the PORT=(nominal,actual)
// pair, it is never actually bound.
type Info struct {
	Name        string
	NominalPort int
	Start       func(out io.Writer) (Handle, error)
}

var All = []Info{
	{Name: "http-echo", NominalPort: HTTPEchoNominalPort, Start: StartHTTPEcho},
	{Name: "http-responses", NominalPort: ResponsesNominalPort, Start: StartResponses},
	{Name: "tcp-echo", NominalPort: TCPEchoNominalPort, Start: StartTCPEcho},
}

func Lookup(name string) (Info, bool) {
	for _, info := range All {
		if info.Name == name {
			return info, true
		}
	}
	return Info{}, false
}
