// Package cross - cross.go implements the cross-compiler invocation.
package cross

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

const (
	// compilerPrefix is the Xuantie Linux toolchain triplet prefix.
	compilerPrefix = "riscv64-unknown-linux-gnu-"
)

// Options holds the inputs of one cross-compilation.
type Options struct {
	// Board is the target board name (see boards.go).
	Board string

	// SourceDir is the directory holding the HHB-generated sources
	// (model.c, main.c) and model.params.
	SourceDir string

	// OutputBinary is the path of the executable to produce. Empty
	// defaults to <SourceDir>/<board>_model.
	OutputBinary string

	// ToolRoot is the cross-toolchain install root. Empty falls back to
	// the TOOLROOT environment variable, then the built-in default.
	ToolRoot string

	// ExtraCFlags are appended after the fixed per-board flags. Empty
	// falls back to the RISCV_CFLAGS environment variable.
	ExtraCFlags string

	// ZstdLibDir is the directory holding the cross-built libzstd. Empty
	// falls back to the ZSTD_LIB_DIR environment variable.
	ZstdLibDir string

	// Sources lists the C files to compile, relative to SourceDir.
	// Empty defaults to model.c and main.c.
	Sources []string
}

// setDefaults resolves fallback values from the process environment.
//
// Environment resolution happens here rather than at flag-parse time so
// values written into .env by setup and exported by the workbench image
// take effect without repeating them on every command line.
func (o *Options) setDefaults() {
	if o.ToolRoot == "" {
		o.ToolRoot = os.Getenv(config.EnvKeyToolRoot)
	}
	if o.ToolRoot == "" {
		o.ToolRoot = config.DefaultToolRoot
	}
	if o.ExtraCFlags == "" {
		o.ExtraCFlags = os.Getenv(config.EnvKeyCFlags)
	}
	if o.ZstdLibDir == "" {
		o.ZstdLibDir = os.Getenv(config.EnvKeyZstdLibDir)
	}
	if len(o.Sources) == 0 {
		o.Sources = []string{"model.c", "main.c"}
	}
	if o.OutputBinary == "" {
		o.OutputBinary = filepath.Join(o.SourceDir, fmt.Sprintf("%s_model", strings.ToLower(o.Board)))
	}
}

// CompilerPath returns the cross-gcc path for the resolved toolchain root.
func (o *Options) CompilerPath() string {
	return filepath.Join(o.ToolRoot, "bin", compilerPrefix+"gcc")
}

// BuildArgs constructs the complete gcc argument vector for the options.
//
// The layout mirrors the vendor reference build line:
//
//	gcc <sources> -o <binary> -march=... -mabi=... -mtune=... -O2 -g
//	    -I<shl include> -L<shl lib> -lshl -L<zstd dir> -lzstd -lm -static
//
// The link is static because target rootfs images rarely carry the SHL
// shared objects.
//
// Returns:
//   - Argument vector (excluding the compiler path itself)
//   - Error if the board is unknown or options are incomplete
func (o *Options) BuildArgs() ([]string, error) {
	if o.SourceDir == "" {
		return nil, fmt.Errorf("source directory is required")
	}

	board, err := GetBoard(o.Board)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, 24)
	for _, src := range o.Sources {
		if filepath.IsAbs(src) {
			args = append(args, src)
		} else {
			args = append(args, filepath.Join(o.SourceDir, src))
		}
	}

	args = append(args,
		"-o", o.OutputBinary,
		"-march="+board.March,
		"-mabi="+board.Mabi,
		"-mtune="+board.Mtune,
		"-O2",
		"-g",
	)

	// SHL headers and the per-target kernel library.
	shlRoot := filepath.Join(o.ToolRoot, "shl")
	args = append(args,
		"-I"+filepath.Join(shlRoot, "include"),
		"-L"+filepath.Join(shlRoot, "lib", board.SHLTarget),
		"-lshl",
	)

	if o.ZstdLibDir != "" {
		args = append(args, "-L"+o.ZstdLibDir)
	}
	args = append(args, "-lzstd", "-lm", "-static")

	if o.ExtraCFlags != "" {
		args = append(args, strings.Fields(o.ExtraCFlags)...)
	}

	return args, nil
}

// Compile runs the cross-compiler for the given options.
//
// The compilation is a single foreground gcc invocation; stdout/stderr
// are passed through so diagnostics reach the operator unmodified. After
// a zero exit the output binary is checked for existence and non-zero
// size - an empty output means the linker was interrupted.
//
// Parameters:
//   - ctx: Context for cancellation; the compiler is killed when it fires
//   - opts: Compilation options
//
// Returns:
//   - Path of the produced binary on success
//   - Error if validation, compilation or the output check fails
func Compile(ctx context.Context, opts *Options) (string, error) {
	opts.setDefaults()

	compiler := opts.CompilerPath()
	if _, err := os.Stat(compiler); err != nil {
		return "", fmt.Errorf("cross compiler not found at %s (set %s or --toolroot): %w",
			compiler, config.EnvKeyToolRoot, err)
	}

	for _, src := range opts.Sources {
		path := src
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.SourceDir, src)
		}
		if err := checkNonEmptyFile(path); err != nil {
			return "", fmt.Errorf("source check failed: %w", err)
		}
	}

	args, err := opts.BuildArgs()
	if err != nil {
		return "", err
	}

	logger.Info("Cross-compiling for board %s: %s %s", opts.Board, compiler, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, compiler, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("compilation cancelled")
		}
		return "", fmt.Errorf("cross compilation failed: %w", err)
	}

	if err := checkNonEmptyFile(opts.OutputBinary); err != nil {
		return "", fmt.Errorf("compiler exited successfully but output is unusable: %w", err)
	}

	logger.Info("Produced target binary: %s", opts.OutputBinary)
	return opts.OutputBinary, nil
}

// checkNonEmptyFile verifies that path names an existing, non-empty
// regular file.
func checkNonEmptyFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s exists but is empty", path)
	}
	return nil
}
