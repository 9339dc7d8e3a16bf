package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/esporykhin/ai-product-framework/config"
	"github.com/esporykhin/ai-product-framework/generator"
	"github.com/esporykhin/ai-product-framework/logger"
	"github.com/esporykhin/ai-product-framework/metrics"
	"github.com/esporykhin/ai-product-framework/store"
	"github.com/esporykhin/ai-product-framework/workspace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "apf",
		Short:         "AI product framework workbench",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config.yaml")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logs")

	root.AddCommand(
		exportCmd(flags),
		csvCmd(flags),
		htmlCmd(flags),
		importCmd(flags),
		parseCmd(),
		focusCmd(flags),
		gtmCmd(flags),
		researchCmd(flags),
		strategyCmd(flags),
		questionsCmd(flags),
		resetCmd(flags),
		serveCmd(flags),
	)
	return root
}

// app is what every command that touches the saved workbench needs.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
	ws      *workspace.Service
	closers []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
	_ = a.log.Sync()
}

func openApp(ctx context.Context, flags *rootFlags) (_ *app, err error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if flags.verbose {
		level = "debug"
	}
	a := &app{cfg: cfg, log: logger.New(level, cfg.Logging.Format), metrics: metrics.New()}
	// Anything opened so far is released on every failed return below.
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	st, closer, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	opts := []workspace.Option{workspace.WithLogger(a.log), workspace.WithMetrics(a.metrics)}
	// Without a usable model the workbench still edits, imports and exports;
	// AI actions then fail with ErrNoAgent.
	if llm, err := buildLLM(cfg.LLM); err != nil {
		a.log.Warn("ai actions disabled", zap.Error(err))
	} else {
		agent, err := generator.NewAgent(llm, generator.WithResearchModel(cfg.LLM.ResearchModel))
		if err != nil {
			return nil, err
		}
		opts = append(opts, workspace.WithAgent(agent))
	}

	ws, err := workspace.New(ctx, st, opts...)
	if err != nil {
		return nil, err
	}
	a.ws = ws
	a.log.Debug("workspace opened", zap.String("store", cfg.Store.Driver), zap.String("provider", cfg.LLM.Provider))
	return a, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func() error, error) {
	switch cfg.Driver {
	case "redis":
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	case "file":
		fs, err := store.NewFileStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	default:
		return nil, nil, fmt.Errorf("store driver %s not supported", cfg.Driver)
	}
}

func buildLLM(cfg config.LLMConfig) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	}
	switch cfg.Provider {
	case "openai", "openrouter":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek speaks the OpenAI protocol but has no default endpoint here.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	case "":
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key")
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
