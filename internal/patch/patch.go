// Package patch instruments HHB-generated C sources with debug output.
//
// The HHB code generator emits a model.c that builds the CSI-NN2 graph
// and registers output tensors via csinn_set_output(). When a converted
// model misbehaves on target, the first question is always whether the
// tensors leaving the graph are sane; this package answers it by
// rewriting model.c so every registered output is dumped (name, shape,
// first values) right before registration.
//
// The transformation is line-oriented and deliberately narrow: it only
// recognizes the fixed shape of generated code, never general C. A file
// that does not contain the expected registration calls is left
// untouched and reported as an error.
package patch

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

// marker tags inserted lines so a second instrumentation pass can detect
// previous work and become a no-op.
const marker = "/* svthhb:debug */"

// setOutputRe matches the output registration calls emitted by the HHB
// code generator:
//
//	csinn_set_output(0, output_123, sess);
//
// Capture groups: 1 = output index, 2 = tensor variable name, 3 = session
// variable name.
var setOutputRe = regexp.MustCompile(`^(\s*)csinn_set_output\((\d+)\s*,\s*(\w+)\s*,\s*(\w+)\s*\)\s*;`)

// includeRe matches preprocessor include lines, used to find where the
// stdio include can be appended.
var includeRe = regexp.MustCompile(`^\s*#include\b`)

// Result describes what an instrumentation pass did.
type Result struct {
	// Sites is the number of output registrations instrumented.
	Sites int

	// AlreadyPatched is true when the input carried the marker and was
	// returned unchanged.
	AlreadyPatched bool
}

// Instrument rewrites generated C source, inserting a dump statement
// before every csinn_set_output call.
//
// The inserted code prints the tensor's dimension count, dimensions and
// the first elements of its data buffer through the SHL debug helper.
// Each inserted line carries a marker comment; input already containing
// the marker is returned unchanged with AlreadyPatched set.
//
// Parameters:
//   - src: Full source text of model.c
//
// Returns:
//   - Rewritten source (equal to input when already patched)
//   - Result with site count
//   - Error if the source contains no recognizable output registrations
func Instrument(src string) (string, Result, error) {
	if strings.Contains(src, marker) {
		logger.Debug("Source already instrumented, leaving unchanged")
		return src, Result{AlreadyPatched: true}, nil
	}

	lines := strings.Split(src, "\n")

	var (
		out         []string
		sites       int
		lastInclude = -1
	)

	for _, line := range lines {
		if includeRe.MatchString(line) {
			lastInclude = len(out)
		}

		m := setOutputRe.FindStringSubmatch(line)
		if m != nil {
			indent, index, tensor := m[1], m[2], m[3]
			out = append(out, dumpBlock(indent, index, tensor)...)
			sites++
		}

		out = append(out, line)
	}

	if sites == 0 {
		return src, Result{}, fmt.Errorf("no csinn_set_output call sites found; not an HHB-generated model source?")
	}

	// The dump block needs stdio; generated sources include csi_nn.h but
	// not always stdio.h.
	stdioLine := marker + " #include <stdio.h>"
	if !strings.Contains(src, "<stdio.h>") {
		if lastInclude >= 0 {
			out = append(out[:lastInclude+1], append([]string{stdioLine}, out[lastInclude+1:]...)...)
		} else {
			out = append([]string{stdioLine}, out...)
		}
	}

	logger.Debug("Instrumented %d output site(s)", sites)
	return strings.Join(out, "\n"), Result{Sites: sites}, nil
}

// dumpBlock renders the debug statements inserted before one output
// registration.
//
// The block prints the tensor geometry and the first few float values.
// Output goes to stderr so it interleaves with the runtime's own
// diagnostics rather than corrupting redirected stdout results.
func dumpBlock(indent, index, tensor string) []string {
	p := func(format string, args ...interface{}) string {
		return indent + marker + " " + fmt.Sprintf(format, args...)
	}

	return []string{
		p("fprintf(stderr, \"[svthhb] output %s: %%s dim_count=%%d\\n\", \"%s\", %s->dim_count);", index, tensor, tensor),
		p("for (int32_t svthhb_i_%s = 0; svthhb_i_%s < %s->dim_count; svthhb_i_%s++) {", index, index, tensor, index),
		p("    fprintf(stderr, \"[svthhb]   dim[%%d]=%%d\\n\", svthhb_i_%s, %s->dim[svthhb_i_%s]);", index, tensor, index),
		p("}"),
		p("if (%s->data && %s->dtype == CSINN_DTYPE_FLOAT32) {", tensor, tensor),
		p("    float *svthhb_d_%s = (float *)%s->data;", index, tensor),
		p("    fprintf(stderr, \"[svthhb]   data[0..3] = %%g %%g %%g %%g\\n\",", index),
		p("            svthhb_d_%s[0], svthhb_d_%s[1], svthhb_d_%s[2], svthhb_d_%s[3]);", index, index, index, index),
		p("}"),
	}
}

// InstrumentFile instruments a model.c file in place.
//
// A backup copy with a .orig suffix is written before the file is
// modified, unless one already exists from a previous run.
//
// Parameters:
//   - path: model.c location
//
// Returns:
//   - Result with site count and already-patched flag
//   - Error if the file cannot be read, parsed or written
func InstrumentFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	patched, res, err := Instrument(string(data))
	if err != nil {
		return res, fmt.Errorf("failed to instrument %s: %w", path, err)
	}
	if res.AlreadyPatched {
		logger.Info("%s is already instrumented, skipping", path)
		return res, nil
	}

	backup := path + ".orig"
	if _, err := os.Stat(backup); os.IsNotExist(err) {
		if err := os.WriteFile(backup, data, 0644); err != nil {
			return res, fmt.Errorf("failed to write backup %s: %w", backup, err)
		}
		logger.Debug("Saved original source to %s", backup)
	}

	if err := os.WriteFile(path, []byte(patched), 0644); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info("Instrumented %d output site(s) in %s", res.Sites, path)
	return res, nil
}
