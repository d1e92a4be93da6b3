package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/cross"
	"github.com/RISCY-SVT/svt-hhb3/internal/patch"
)

// CompileOptions holds options for the compile command
type CompileOptions struct {
	*GlobalOptions

	// Board is the target board name
	Board string

	// SourceDir holds the hhb-generated sources
	SourceDir string

	// Output is the path of the executable to produce
	Output string

	// ToolRoot overrides the cross-toolchain install root
	ToolRoot string

	// ZstdLibDir overrides the cross-built libzstd directory
	ZstdLibDir string

	// CFlags are appended after the fixed per-board flags
	CFlags string

	// Sources overrides the C files to compile
	Sources []string

	// Debug instruments model.c with tensor dumps before compiling
	Debug bool
}

// NewCompileCommand creates the compile command.
//
// The compile command cross-compiles the C sources hhb generated into a
// static executable for the target board. It expects the Xuantie
// toolchain, so it is normally run inside the workbench shell where the
// toolchain is installed under TOOLROOT.
//
// Usage:
//
//	svthhb compile BOARD [OPTIONS]
//
// Examples:
//
//	# Compile the sources in ./hhb_out for the C920
//	svthhb compile c920 -s hhb_out
//
//	# Instrument model.c with tensor dumps first
//	svthhb compile th1520 -s hhb_out --debug
//
//	# Custom output path and extra compiler flags
//	svthhb compile c920 -s hhb_out -o bin/detector --cflags "-DNDEBUG"
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for cross-compiling
func NewCompileCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &CompileOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "compile BOARD",
		Short: "Cross-compile hhb output for a Xuantie board",
		Long: `Cross-compile the hhb-generated sources into a static executable.

The board selects the fixed architecture flags (-march/-mabi/-mtune)
and the SHL kernel library variant to link. The resulting binary is
statically linked so it runs on the target without a sysroot.

The Xuantie gcc is resolved under TOOLROOT (flag, environment, or the
built-in default), so run this inside the workbench shell or on a host
with the toolchain installed. libzstd's location comes from
ZSTD_LIB_DIR the same way.

With --debug, model.c is instrumented in place with per-output tensor
dumps to stderr before compiling (a .orig backup is written next to
it). Instrumentation is idempotent; recompiling an already patched
file does not duplicate the dumps.

Supported boards: ` + strings.Join(cross.SupportedBoards(), ", "),
		Example: `  # Compile the sources in ./hhb_out for the C920
  svthhb compile c920 -s hhb_out

  # Instrument with tensor dumps first
  svthhb compile th1520 -s hhb_out --debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Board = args[0]
			return runCompile(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SourceDir, "source-dir", "s", "",
		"directory with the hhb-generated sources (default: <workspace>/"+defaultConvertOutputDir+")")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "",
		"output executable path (default: <source-dir>/<board>_model)")
	cmd.Flags().StringVar(&opts.ToolRoot, "toolroot", "",
		"cross-toolchain install root (default: $TOOLROOT)")
	cmd.Flags().StringVar(&opts.ZstdLibDir, "zstd-lib-dir", "",
		"directory with the cross-built libzstd (default: $ZSTD_LIB_DIR)")
	cmd.Flags().StringVar(&opts.CFlags, "cflags", "",
		"extra compiler flags (default: $RISCV_CFLAGS)")
	cmd.Flags().StringArrayVar(&opts.Sources, "source", nil,
		"C file to compile, relative to the source dir (repeatable; default: model.c main.c)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false,
		"instrument model.c with tensor dumps before compiling")

	return cmd
}

// runCompile executes the compile command logic
func runCompile(opts *CompileOptions) error {
	cfg, err := getConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	sourceDir := opts.SourceDir
	if sourceDir == "" {
		sourceDir = filepath.Join(cfg.Workspace, defaultConvertOutputDir)
	} else if !filepath.IsAbs(sourceDir) {
		sourceDir = filepath.Join(cfg.Workspace, sourceDir)
	}

	if opts.Debug {
		modelFile := filepath.Join(sourceDir, "model.c")
		result, err := patch.InstrumentFile(modelFile)
		if err != nil {
			return fmt.Errorf("failed to instrument %s: %w", modelFile, err)
		}
		if result.AlreadyPatched {
			fmt.Printf("%s already instrumented, leaving it unchanged\n", modelFile)
		} else {
			fmt.Printf("Instrumented %d output site(s) in %s\n", result.Sites, modelFile)
		}
	}

	ctx := contextWithInterrupt()

	binary, err := cross.Compile(ctx, &cross.Options{
		Board:        opts.Board,
		SourceDir:    sourceDir,
		OutputBinary: opts.Output,
		ToolRoot:     opts.ToolRoot,
		ExtraCFlags:  opts.CFlags,
		ZstdLibDir:   opts.ZstdLibDir,
		Sources:      opts.Sources,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Built %s\n", binary)
	return nil
}
