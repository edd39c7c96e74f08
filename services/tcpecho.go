package services

import (
	"context"
	"io"
	"log"
	"net"
	"sync"

	"github.com/densk/testservices/common"
)

const TCPEchoNominalPort = 5000

const echoChunkSize = 1024

type tcpEcho struct {
	ln       net.Listener
	lock     sync.Mutex
	stopping bool
}

// StartTCPEcho binds an ephemeral loopback port, announces it on out, and
// echoes every connection's bytes back on a goroutine per connection until
// the peer closes.
func StartTCPEcho(out io.Writer) (Handle, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &tcpEcho{ln: ln}
	common.WriteStartup(out, common.TCPBanner, TCPEchoNominalPort, s.Port())
	go s.acceptLoop()
	return s, nil
}

func (s *tcpEcho) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.lock.Lock()
			stopping := s.stopping
			s.lock.Unlock()
			if !stopping {
				log.Printf("tcp-echo accept failed: %s\n", err)
			}
			return
		}
		go echoConn(conn)
	}
}

func echoConn(conn net.Conn) {
	defer conn.Close()
	buf := make([]byte, echoChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *tcpEcho) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Shutdown stops the accept loop. Connections already being echoed keep
// running until their peer closes.
func (s *tcpEcho) Shutdown(_ context.Context) error {
	s.lock.Lock()
	s.stopping = true
	s.lock.Unlock()
	return s.ln.Close()
}
