// Package e2e runs whole programs under testdata/in through the compiler
// and VM and diffs their stdout against the golden files under testdata/out.
package e2e_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/hypl/internal/filetest"
	"github.com/mna/hypl/lang/compiler"
	"github.com/mna/hypl/lang/object"
	"github.com/mna/hypl/lang/vm"
)

var testUpdateE2ETests = flag.Bool("test.update-e2e-tests", false, "If set, replace expected end-to-end test results with actual results.")

func TestPrograms(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".hypl") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			heap := object.NewHeap()
			fn, errs := compiler.Compile(string(src), heap, nil)
			require.True(t, errs == nil || errs.Empty(), "unexpected compile errors: %v", errs)
			require.NotNil(t, fn)

			var out, errOut bytes.Buffer
			machine := vm.New(heap, &out, &errOut)
			_, err = machine.Interpret(fn)
			require.NoError(t, err)

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateE2ETests)
		})
	}
}
