package harness

import (
	"strings"
	"testing"
	"time"

	"github.com/densk/testservices/common/unix"
)

// fakeService pretends to be a fixture: it prints the startup protocol and
// hangs around until stopped.
func fakeService(lines string) Definition {
	return Definition{
		Name:    "fake",
		Cmd:     "printf '" + lines + "'; sleep 3",
		Workdir: ".",
	}
}

const startupLines = `Starting http server...\nPORT=(80,8081)\nREADY\n`

func TestServiceReady(t *testing.T) {
	s, err := StartService(fakeService(startupLines))
	assert(t, err, nil)
	defer s.Stop()

	assert(t, s.Ready(2*time.Second), nil)

	port, err := s.Port(80)
	assert(t, err, nil)
	assert(t, port, 8081)

	_, err = s.Port(5000)
	if err == nil {
		t.Error("expected error for an unexposed port")
	}
}

func TestServiceReady_ExitsEarly(t *testing.T) {
	s, err := StartService(Definition{Name: "quitter", Cmd: "true", Workdir: "."})
	assert(t, err, nil)
	err = s.Ready(2 * time.Second)
	if err == nil || !strings.Contains(err.Error(), "exited") {
		t.Fatalf("expected exited error, got %v", err)
	}
}

func TestServiceReady_Timeout(t *testing.T) {
	s, err := StartService(Definition{Name: "mute", Cmd: "sleep 3", Workdir: "."})
	assert(t, err, nil)
	defer s.Stop()
	err = s.Ready(50 * time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "READY") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestServicePorts_Malformed(t *testing.T) {
	s, err := StartService(fakeService(`PORT=(80)\nREADY\n`))
	assert(t, err, nil)
	defer s.Stop()
	assert(t, s.Ready(2*time.Second), nil)
	_, err = s.Ports()
	if err == nil {
		t.Error("expected malformed port error")
	}
}

func TestServiceStop(t *testing.T) {
	s, err := StartService(fakeService(startupLines))
	assert(t, err, nil)
	assert(t, s.Ready(2*time.Second), nil)

	pid := s.cmd.Process.Pid
	assert(t, s.Stop(), nil)
	assert(t, unix.IsProcessAlive(pid), false)
	// stopping twice is fine
	assert(t, s.Stop(), nil)
}

func TestServiceEnv(t *testing.T) {
	s, err := StartService(Definition{
		Name:    "env",
		Cmd:     "printenv FIXTURE_GREETING; printf 'READY\\n'; sleep 1",
		Workdir: ".",
		Env:     []EnvVar{{Name: "FIXTURE_GREETING", Value: "hi"}},
	})
	assert(t, err, nil)
	defer s.Stop()
	assert(t, s.Ready(2*time.Second), nil)
	if !strings.Contains(s.Output(), "hi") {
		t.Errorf("env var not passed, output: %q", s.Output())
	}
}
