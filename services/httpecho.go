package services

import (
	"context"
	"io"
	"net"
	"net/http"

	"github.com/densk/testservices/common"
)

const HTTPEchoNominalPort = 80

type httpService struct {
	ln  net.Listener
	srv *http.Server
}

// StartHTTPEcho binds an ephemeral loopback port, announces it on out and
// serves in the background. POST requests get their body echoed back verbatim.
// Any other method falls through to the mux default, a 405.
func StartHTTPEcho(out io.Writer) (Handle, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", echo)
	return startHTTP(out, mux, HTTPEchoNominalPort)
}

func echo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// startHTTP is shared by both HTTP fixtures: the startup lines must all be
// written before the first request is handled.
func startHTTP(out io.Writer, mux *http.ServeMux, nominalPort int) (Handle, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &httpService{ln: ln, srv: &http.Server{Handler: mux}}
	common.WriteStartup(out, common.HTTPBanner, nominalPort, s.Port())
	go s.srv.Serve(ln)
	return s, nil
}

func (s *httpService) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *httpService) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
