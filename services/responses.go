package services

import (
	"bufio"
	"io"
	"net/http"
	"os"
	"strings"
)

const ResponsesNominalPort = 8080

// ResponsesFile maps request paths to canned bodies, one mapping per line:
// the first space-delimited token is the path, the rest of the line is the
// literal body.
const ResponsesFile = "responses.txt"

var responsesPath = ResponsesFile

// StartResponses binds an ephemeral loopback port and replays canned
// responses from ResponsesFile in the working directory. The file is re-read
// on every request, so tests can rewrite it while the service is up.
func StartResponses(out io.Writer) (Handle, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", cannedResponse)
	return startHTTP(out, mux, ResponsesNominalPort)
}

func cannedResponse(w http.ResponseWriter, r *http.Request) {
	body, found, err := lookupResponse(responsesPath, r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// lookupResponse scans the file for the first line whose path token matches.
func lookupResponse(file, path string) (body string, found bool, err error) {
	f, err := os.Open(file)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// canned bodies can outgrow the default 64KB token limit
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		linePath, lineBody, _ := strings.Cut(scanner.Text(), " ")
		if linePath == path {
			return lineBody, true, nil
		}
	}
	return "", false, scanner.Err()
}
