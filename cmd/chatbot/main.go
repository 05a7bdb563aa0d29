package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	aoption "github.com/anthropics/anthropic-sdk-go/option"
	ooption "github.com/openai/openai-go/option"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/petasbytes/go-chatbot/internal/config"
	"github.com/petasbytes/go-chatbot/internal/logging"
	"github.com/petasbytes/go-chatbot/internal/prompt"
	"github.com/petasbytes/go-chatbot/internal/provider"
	"github.com/petasbytes/go-chatbot/internal/runner"
	"github.com/petasbytes/go-chatbot/internal/telemetry"
	"github.com/petasbytes/go-chatbot/memory"
	"github.com/petasbytes/go-chatbot/tools"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var logger *zap.Logger

	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "Console chat assistant with tools and long-term memory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err = logging.New(logging.Options{
				Level:   cfg.Logging.Level,
				Format:  cfg.Logging.Format,
				Verbose: flags.verbose,
			})
			if err != nil {
				return err
			}
			return chat(cmd.Context(), cfg, logger, flags.verbose, cmd.InOrStdin(), cmd.OutOrStdout())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging and tool call echo")

	root.AddCommand(newToolsCmd(flags))
	return root
}

func main() {
	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func chat(ctx context.Context, cfg *config.Config, logger *zap.Logger, verbose bool, in io.Reader, out io.Writer) error {
	rec, err := telemetry.NewRecorder(telemetry.Config{
		Observe:      cfg.Telemetry.Observe,
		ArtifactsDir: cfg.Telemetry.ArtifactsDir,
	})
	if err != nil {
		return err
	}
	defer rec.Close()

	r, err := newRunner(cfg, logger, rec, verbose, out)
	if err != nil {
		return err
	}
	err = r.Run(ctx, in, out)
	if err != nil && ctx.Err() != nil {
		// Interrupted by a signal; not a failure.
		return nil
	}
	return err
}

// newRunner wires the store, registry, assembler and model client for one session.
func newRunner(cfg *config.Config, logger *zap.Logger, rec *telemetry.Recorder, verbose bool, out io.Writer) (*runner.Runner, error) {
	store := memory.NewStore(cfg.Memory.Capacity, cfg.OverflowPolicy())
	reg, err := tools.DefaultRegistry(tools.Deps{Memory: store, MapsAPIKey: cfg.Tools.MapsAPIKey})
	if err != nil {
		return nil, err
	}
	asm := prompt.NewAssembler(prompt.Preamble(cfg.Assistant.UserLocation), store, reg)

	model, err := newModelClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("chatbot starting",
		zap.Stringer("model", model),
		zap.Int("tools", reg.Len()),
		zap.Int("memory_capacity", store.Capacity()),
		zap.String("memory_overflow", string(store.Policy())),
		zap.Bool("observe", rec.Enabled()),
	)

	opts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithRecorder(rec),
		runner.WithParallelDispatch(cfg.Tools.ParallelDispatch),
		runner.WithToolTimeout(cfg.GetToolTimeout()),
		runner.WithModelTimeout(cfg.GetModelTimeout()),
		runner.WithMaxSteps(cfg.Assistant.MaxSteps),
		runner.WithExitSentinel(cfg.Assistant.ExitSentinel),
	}
	if verbose {
		opts = append(opts, runner.WithToolEcho(out))
	}
	return runner.New(model, reg, asm, opts...), nil
}

type modelClient interface {
	runner.ModelClient
	fmt.Stringer
}

func newModelClient(cfg *config.Config, logger *zap.Logger) (modelClient, error) {
	opts := []provider.Option{
		provider.WithModel(cfg.Model.Name),
		provider.WithMaxTokens(cfg.Model.MaxTokens),
		provider.WithTemperature(cfg.Model.Temperature),
		provider.WithLogger(logger),
	}
	switch cfg.Model.Provider {
	case provider.NameAnthropic:
		reqOpts := []aoption.RequestOption{aoption.WithAPIKey(cfg.Model.APIKey)}
		if cfg.Model.BaseURL != "" {
			reqOpts = append(reqOpts, aoption.WithBaseURL(cfg.Model.BaseURL))
		}
		return provider.NewAnthropic(provider.NewAnthropicClient(reqOpts...), opts...), nil
	case provider.NameOpenAI:
		reqOpts := []ooption.RequestOption{ooption.WithAPIKey(cfg.Model.APIKey)}
		if cfg.Model.BaseURL != "" {
			reqOpts = append(reqOpts, ooption.WithBaseURL(cfg.Model.BaseURL))
		}
		return provider.NewOpenAI(provider.NewOpenAIClient(reqOpts...), opts...), nil
	default:
		return nil, fmt.Errorf("%w: model provider %q", config.ErrInvalidConfig, cfg.Model.Provider)
	}
}
