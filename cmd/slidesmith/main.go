// Package main provides the slidesmith CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richinex/slidesmith/cli"
)

var (
	// Global flags
	provider string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "slidesmith",
		Short: "Turn a topic or a document into a branded PowerPoint deck",
		Long: `A CLI tool that asks an LLM for a slide outline and renders it onto a .pptx template.

Short inputs are treated as a topic and the model invents the deck.
Longer inputs are treated as source text and the model extracts the deck from it.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (gemini, openai, anthropic, deepseek); defaults to DECK_PROVIDER or gemini")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(outlineCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{Provider: provider, Verbose: verbose}
}

func addDeckFlags(cmd *cobra.Command, d *cli.DeckOptions) {
	cmd.Flags().StringVarP(&d.Output, "output", "o", "", "Output .pptx path (default DECK_OUTPUT)")
	cmd.Flags().StringVar(&d.Template, "template", "", "Template .pptx path (default DECK_TEMPLATE)")
	cmd.Flags().StringVar(&d.Layouts, "layouts", "", "YAML layout map (default DECK_LAYOUTS)")
}

func generateCmd() *cobra.Command {
	var file string
	var deckOpts cli.DeckOptions

	cmd := &cobra.Command{
		Use:   "generate [topic or text]",
		Short: "Generate an outline and render it as a deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cli.ReadInput(args, file)
			if err != nil {
				return err
			}
			return cli.Generate(cmd.Context(), input, deckOpts, options())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the source text from a file")
	addDeckFlags(cmd, &deckOpts)

	return cmd
}

func outlineCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "outline [topic or text]",
		Short: "Print the outline JSON without rendering",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cli.ReadInput(args, file)
			if err != nil {
				return err
			}
			return cli.Outline(cmd.Context(), input, options())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the source text from a file")

	return cmd
}

func renderCmd() *cobra.Command {
	var src cli.RenderSource
	var deckOpts cli.DeckOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved outline without calling the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Render(cmd.Context(), src, deckOpts, options())
		},
	}

	cmd.Flags().StringVar(&src.OutlinePath, "outline", "", "Outline JSON file")
	cmd.Flags().StringVar(&src.HistoryID, "history", "", "Id (or unique id prefix) of a recorded outline")
	cmd.MarkFlagsMutuallyExclusive("outline", "history")
	cmd.MarkFlagsOneRequired("outline", "history")
	addDeckFlags(cmd, &deckOpts)

	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded outlines",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent outlines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.HistoryList(cmd.Context(), limit, options())
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records (0 for all)")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a recorded outline as JSON (full id or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.HistoryShow(cmd.Context(), args[0], options())
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string
	var deckOpts cli.DeckOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the deck API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cli.Serve(ctx, addr, deckOpts, options())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default DECK_SERVER_ADDR)")
	cmd.Flags().StringVar(&deckOpts.Template, "template", "", "Template .pptx path (default DECK_TEMPLATE)")
	cmd.Flags().StringVar(&deckOpts.Layouts, "layouts", "", "YAML layout map (default DECK_LAYOUTS)")

	return cmd
}
