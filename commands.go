package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/esporykhin/ai-product-framework/markdown"
	"github.com/esporykhin/ai-product-framework/server"
)

// withApp opens the workbench around fn.
func withApp(flags *rootFlags, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), flags)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// writeOut prints to stdout, or to path when one is given.
func writeOut(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readIn(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func exportCmd(flags *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the workbench as Markdown",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			if out != "" {
				return writeOut(cmd, out, a.ws.ExportFile())
			}
			return writeOut(cmd, "", []byte(a.ws.ExportMarkdown()))
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write a downloadable .md file instead of printing")
	return cmd
}

func csvCmd(flags *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Print one CSV row per hypothesis",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			return writeOut(cmd, out, []byte(a.ws.ExportCSV()))
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func htmlCmd(flags *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "html",
		Short: "Render the Markdown export as HTML",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			body, err := a.ws.ExportHTML()
			if err != nil {
				return err
			}
			return writeOut(cmd, out, []byte(body))
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func importCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a Markdown export into the workbench (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			md, err := readIn(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := a.ws.ImportMarkdown(cmd.Context(), md)
			if err != nil {
				return err
			}
			verb := "appended"
			if res.Replaced {
				verb = "replaced the default with"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d hypotheses, active %s\n", verb, res.Imported, res.ActiveProblemID)
			return nil
		}),
	}
}

// parseCmd shows what an import would recover without touching the store.
func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a Markdown export and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := readIn(cmd, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(markdown.Parse(md))
		},
	}
}

// aiContext bounds a model call by the configured timeout.
func aiContext(cmd *cobra.Command, a *app) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.LLM.Timeout)
}

func focusCmd(flags *rootFlags) *cobra.Command {
	var problem string
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Draft the strategic focus of a hypothesis",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx, cancel := aiContext(cmd, a)
			defer cancel()
			text, err := a.ws.SynthesizeFocus(ctx, problem)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}),
	}
	cmd.Flags().StringVar(&problem, "problem", "", "hypothesis id (default: active)")
	return cmd
}

func gtmCmd(flags *rootFlags) *cobra.Command {
	var problem string
	cmd := &cobra.Command{
		Use:   "gtm",
		Short: "Draft the GTM plan of a hypothesis",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx, cancel := aiContext(cmd, a)
			defer cancel()
			text, err := a.ws.GenerateGTM(ctx, problem)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}),
	}
	cmd.Flags().StringVar(&problem, "problem", "", "hypothesis id (default: active)")
	return cmd
}

func researchCmd(flags *rootFlags) *cobra.Command {
	var problem, model string
	cmd := &cobra.Command{
		Use:   "research QUERY...",
		Short: "Run a research query and attach it to a hypothesis",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			ctx, cancel := aiContext(cmd, a)
			defer cancel()
			item, err := a.ws.Research(ctx, problem, strings.Join(args, " "), model)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, item.Result)
			for _, src := range item.Sources {
				fmt.Fprintf(out, "- %s %s\n", src.Title, src.URL)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&problem, "problem", "", "hypothesis id (default: active)")
	cmd.Flags().StringVar(&model, "model", "", "research model (default: llm.research_model)")
	return cmd
}

func strategyCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "strategy",
		Short: "Draft the global strategy across all hypotheses",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx, cancel := aiContext(cmd, a)
			defer cancel()
			text, err := a.ws.GenerateStrategy(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}),
	}
}

func questionsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Generate stakeholder validation questions",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx, cancel := aiContext(cmd, a)
			defer cancel()
			items, err := a.ws.GenerateValidation(ctx)
			if err != nil {
				return err
			}
			for i, q := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, q.Question)
			}
			return nil
		}),
	}
}

func resetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop all saved data",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			return a.ws.Reset(cmd.Context())
		}),
	}
}

func serveCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			srv, err := server.New(a.ws,
				server.WithLogger(a.log),
				server.WithMetrics(a.metrics),
				server.WithAITimeout(a.cfg.LLM.Timeout),
			)
			if err != nil {
				return err
			}
			listen := a.cfg.Server.Addr
			if addr != "" {
				listen = addr
			}
			httpSrv := &http.Server{
				Addr:              listen,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(shutdownCtx)
			}()

			a.log.Info("starting web server", zap.String("addr", listen))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
