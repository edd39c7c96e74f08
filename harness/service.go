package harness

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/densk/testservices/common"
	"github.com/densk/testservices/common/unix"
)

const stopTimeout = 3 * time.Second

// Service is a fixture process launched by the harness. Its stdout is
// accumulated in the background so the harness can wait for the READY marker
// and pick up the PORT=(nominal,actual) pairs.
type Service struct {
	name   string
	cmd    *exec.Cmd
	out    *outputStream
	exited chan struct{}
}

// StartService launches the definition's command through the shell with
// stdout piped to the harness.
func StartService(def Definition) (*Service, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	cmd := exec.Command("sh", "-c", def.Cmd)
	cmd.Dir = def.Workdir
	cmd.Env = os.Environ()
	for _, envVar := range def.Env {
		cmd.Env = append(cmd.Env, envVar.Name+"="+envVar.Value)
	}
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start '%s' service: %s", def.Name, err)
	}

	s := &Service{
		name:   def.Name,
		cmd:    cmd,
		out:    newOutputStream(stdout),
		exited: make(chan struct{}),
	}
	go func() {
		// drain the pipe fully before reaping, Wait closes it
		<-s.out.done
		cmd.Wait()
		close(s.exited)
	}()
	return s, nil
}

func (s *Service) Name() string {
	return s.name
}

// Output is everything the service has written to stdout so far.
func (s *Service) Output() string {
	return s.out.String()
}

// Ready blocks until the service prints the READY marker. It fails if the
// process exits first or the timeout passes.
func (s *Service) Ready(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if strings.Contains(s.Output(), common.ReadyMarker) {
			return nil
		}
		select {
		case <-s.exited:
			// the copier might still have been draining the pipe
			if strings.Contains(s.Output(), common.ReadyMarker) {
				return nil
			}
			return fmt.Errorf("service '%s' exited before printing %s", s.name, common.ReadyMarker)
		case <-time.After(5 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("service '%s' didn't print %s within %s", s.name, common.ReadyMarker, timeout)
		}
	}
}

// Ports parses every PORT pair the service announced into nominal->actual.
func (s *Service) Ports() (map[int]int, error) {
	ports := make(map[int]int)
	for _, line := range strings.Split(s.Output(), "\n") {
		nominal, actual, ok, err := common.ParsePortLine(line)
		if err != nil {
			return nil, fmt.Errorf("service '%s': %s", s.name, err)
		}
		if ok {
			ports[nominal] = actual
		}
	}
	return ports, nil
}

// Port returns the host port the service exposes the nominal port on.
func (s *Service) Port(nominal int) (int, error) {
	ports, err := s.Ports()
	if err != nil {
		return 0, err
	}
	actual, ok := ports[nominal]
	if !ok {
		return 0, fmt.Errorf("service '%s' doesn't expose port %d", s.name, nominal)
	}
	return actual, nil
}

// Stop terminates the process, escalating to SIGKILL after stopTimeout.
func (s *Service) Stop() error {
	select {
	case <-s.exited:
		return nil
	default:
	}
	err := unix.TerminateProcessTimeout(s.cmd.Process.Pid, stopTimeout)
	<-s.exited
	return err
}

// outputStream drains a pipe on its own goroutine. Reading and the copier
// race on the buffer, hence the lock.
type outputStream struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	done chan struct{}
}

func newOutputStream(r io.Reader) *outputStream {
	o := &outputStream{done: make(chan struct{})}
	go func() {
		defer close(o.done)
		chunk := make([]byte, 1024)
		for {
			n, err := r.Read(chunk)
			if n > 0 {
				o.mu.Lock()
				o.buf.Write(chunk[:n])
				o.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
	return o
}

func (o *outputStream) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}
