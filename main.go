package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kapitanov/chip8emu/internal/disasm"
	"github.com/kapitanov/chip8emu/internal/hal"
	"github.com/kapitanov/chip8emu/internal/headless"
	"github.com/kapitanov/chip8emu/internal/statsview"
	"github.com/kapitanov/chip8emu/internal/term"
	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/spf13/cobra"
)

const (
	backendSDL      = "sdl"
	backendTerm     = "term"
	backendHeadless = "headless"
)

type options struct {
	verbose   bool
	backend   string
	speed     int
	scale     int
	frames    int
	seed      uint64
	statsview string
}

type backend interface {
	vm.HAL
	Shutdown()
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger(opts.verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.Flags().StringVarP(&opts.backend, "backend", "b", backendSDL, "display backend: sdl, term or headless")
	cmd.Flags().IntVar(&opts.speed, "speed", 833, "instructions per second")
	cmd.Flags().IntVar(&opts.scale, "scale", 16, "sdl window pixel scale")
	cmd.Flags().IntVar(&opts.frames, "frames", 120, "frames to run with the headless backend")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed, 0 seeds from the clock")
	cmd.Flags().StringVar(&opts.statsview, "statsview", "", "serve runtime stats on this address, e.g. localhost:12600")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		return run(opts, args[0])
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "disasm PATH_TO_ROM_FILE",
		Short: "Print a listing of a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			bs, err := loadROM(args[0])
			if err != nil {
				return err
			}
			return disasm.Write(os.Stdout, bs)
		},
	})

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func setupLogger(verbose bool) {
	loggerOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if verbose {
		loggerOpts.Level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))
}

func loadROM(path string) ([]byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load file %q: %w", path, err)
	}
	return bs, nil
}

func run(opts options, path string) error {
	if opts.speed <= 0 {
		return fmt.Errorf("invalid speed %d", opts.speed)
	}

	bs, err := loadROM(path)
	if err != nil {
		return err
	}

	var vmOpts []vm.Option
	if opts.seed != 0 {
		vmOpts = append(vmOpts, vm.WithSeed(opts.seed))
	}

	machine, err := vm.New(bs, vmOpts...)
	if err != nil {
		return fmt.Errorf("unable to load program %q: %w", path, err)
	}

	if opts.statsview != "" {
		stop := statsview.Launch(opts.statsview)
		defer stop()
	}

	h, err := newBackend(opts)
	if err != nil {
		return fmt.Errorf("unable to initialize %s backend: %w", opts.backend, err)
	}
	defer h.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer logMachine(machine)

	for {
		err = machine.Run(ctx, h)

		if errors.Is(err, vm.ErrReboot) {
			slog.Info("reboot")
			continue
		}

		if errors.Is(err, vm.ErrQuit) || errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	}
}

func logMachine(machine *vm.VM) {
	state := machine.State()
	timers := machine.Timers()

	slog.Debug(
		"machine stopped",
		"pc", state.PC.String(),
		"halted", state.Halted,
		"delay", timers.Delay(),
		"sound", timers.Sound(),
	)
}

func newBackend(opts options) (backend, error) {
	delay := time.Second / time.Duration(opts.speed)

	switch opts.backend {
	case backendSDL:
		cfg := hal.DefaultConfig()
		cfg.Scale = opts.scale
		cfg.InstructionDelay = delay
		return hal.New(cfg)

	case backendTerm:
		cfg := term.DefaultConfig()
		cfg.InstructionDelay = delay
		return term.New(cfg)

	case backendHeadless:
		h, err := headless.New(opts.frames)
		if err != nil {
			return nil, err
		}
		return &headlessBackend{HAL: h}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", opts.backend)
	}
}

// headlessBackend prints the final frame on shutdown.
type headlessBackend struct {
	*headless.HAL
}

func (b *headlessBackend) Shutdown() {
	if err := b.Dump(os.Stdout); err != nil {
		slog.Error("failed to dump frame", "err", err)
	}
}
