package harness

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDefinitions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadDefinitions(t *testing.T) {
	path := writeDefinitions(t, `
- name: http-echo
  cmd: testservices run http-echo
- name: tcp-echo
  cmd: testservices run tcp-echo
  workdir: /tmp
  env:
    - name: FOO
      value: bar
`)
	defs, err := ReadDefinitions(path)
	assert(t, err, nil)
	assert(t, len(defs), 2)

	echo := defs["http-echo"]
	assert(t, echo.Cmd, "testservices run http-echo")
	// workdir defaults to the directory of the definitions file
	assert(t, echo.Workdir, filepath.Dir(path))

	tcp := defs["tcp-echo"]
	assert(t, tcp.Workdir, "/tmp")
	assert(t, len(tcp.Env), 1)
	assert(t, tcp.Env[0].Name, "FOO")
	assert(t, tcp.Env[0].Value, "bar")
}

func TestReadDefinitions_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"missing cmd":  "- name: http-echo\n",
		"missing name": "- cmd: sleep 1\n",
		"duplicate":    "- name: a\n  cmd: sleep 1\n- name: a\n  cmd: sleep 2\n",
		"not yaml":     "{{{",
	} {
		path := writeDefinitions(t, content)
		_, err := ReadDefinitions(path)
		if err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestReadDefinitions_NoFile(t *testing.T) {
	_, err := ReadDefinitions("/noexist/services.yaml")
	if err == nil {
		t.Error("expected error")
	}
}

func assert[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, wanted %v", got, want)
	}
}
