package cli

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// captureOutput returns what f prints to stdout. The pipe is drained while f
// runs so large outputs cannot block it.
func captureOutput(f func()) string {
	orig := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	f()
	w.Close()
	return <-done
}

// chdir changes the working directory to dir and restores it when the test
// finishes, mirroring testing.T.Chdir for toolchains that lack it.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatal(err)
		}
	})
}
