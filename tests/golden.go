// Package tests provides helpers shared by the tests of several packages.
package tests

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"
)

var update = flag.Bool("update", false, "update golden files")

// Golden compares got with the content of testdata/<name>.golden. The golden
// file is created when missing, or overwritten when -update is passed.
func Golden(tb testing.TB, name, got string) {
	tb.Helper()

	path := filepath.Join("testdata", name+".golden")
	want, err := os.ReadFile(path)
	if *update || os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			tb.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			tb.Fatal(err)
		}
		tb.Logf("golden file written: %s", path)
		return
	}
	if err != nil {
		tb.Fatal(err)
	}

	if string(want) == got {
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(want), got, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	tb.Errorf("%s mismatch (-want +got):\n%s", path, dmp.DiffPrettyText(diffs))
}

// Parallel runs fn for each index in [0, n) concurrently and returns the
// first error.
func Parallel(n int, fn func(i int) error) error {
	var g errgroup.Group
	for i := range n {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}
