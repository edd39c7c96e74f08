package common

import (
	"net"
	"testing"
	"time"
)

func TestGetFreePort(t *testing.T) {
	p, err := GetFreePort()
	assert(t, err, nil)
	if p == 0 {
		t.Errorf("port 0")
	}
}

func TestIsPortOpen(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert(t, err, nil)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port
	assert(t, IsPortOpen(port), true)

	free, err := GetFreePort()
	assert(t, err, nil)
	assert(t, IsPortOpenTimeout(free, 50*time.Millisecond), false)
}

func TestIsPortCloseRetry(t *testing.T) {
	free, err := GetFreePort()
	assert(t, err, nil)
	assert(t, IsPortCloseRetry(free, 10*time.Millisecond, 3), true)
}
