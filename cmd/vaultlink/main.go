// Package main implements the vaultlink MCP server and CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/taigrr/vaultlink/internal/index"
	"github.com/taigrr/vaultlink/internal/linker"
	"github.com/taigrr/vaultlink/internal/pathfilter"
	"github.com/taigrr/vaultlink/internal/toolcache"
	"github.com/taigrr/vaultlink/internal/vault"
	"github.com/taigrr/vaultlink/internal/zones"
)

var (
	noteVault   *vault.Vault
	noteIndex   *index.Local
	indexClient *index.Client
	logger      zerolog.Logger

	debug     bool
	vaultFlag string
)

func main() {
	cmd := &cobra.Command{
		Use:   "vaultlink [vault-path]",
		Short: "Wikilink assistant for Obsidian vaults",
		Long: `vaultlink is a Model Context Protocol (MCP) server that inserts
wikilinks into Obsidian notes. It scans note text for protected
regions (code, links, frontmatter, math and other markdown
structures), suggests links to other notes only in plain prose,
and serves vault queries through a tiered response cache.`,
		Example: `vaultlink ~/obsidian`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runServer,
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "vault root (default: current directory)")

	cmd.AddCommand(scanCommand(), linkCommand())

	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func setup(args []string) error {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	vaultPath := vaultFlag
	if len(args) > 0 {
		vaultPath = args[0]
	}
	if vaultPath == "" {
		var err error
		vaultPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	noteVault = vault.Open(vaultPath, pathfilter.New(nil))
	noteIndex = index.NewLocal(noteVault, logger)
	indexClient = index.NewClient(noteIndex, toolcache.New(logger))

	logger.Debug().Str("vault", noteVault.Root()).Msg("vault opened")
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := setup(args); err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "vaultlink",
		Version: version,
	}, nil)

	registerTools(server)

	if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}
	return nil
}

func scanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <note-path>",
		Short: "Print the protected zones of a note as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(nil); err != nil {
				return err
			}
			note, err := noteVault.ReadNote(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(zones.Scan(note.RawContent))
		},
	}
}

func linkCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "link <note-path>",
		Short: "Insert wikilinks for mentions of other notes",
		Long: `link rewrites plain-prose mentions of other vault notes into
wikilinks. Mentions inside code, existing links, frontmatter and
other protected regions are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setup(nil); err != nil {
				return err
			}
			path := args[0]
			note, err := noteVault.ReadNote(path)
			if err != nil {
				return err
			}
			targets, err := linker.BuildTargets(noteVault, path)
			if err != nil {
				return err
			}
			res := linker.InsertLinks(note.RawContent, targets)
			if !dryRun && len(res.Inserted) > 0 {
				if err := noteVault.WriteRaw(path, res.Content); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d links inserted, %d mentions skipped\n",
				path, len(res.Inserted), res.Skipped)
			for _, s := range res.Inserted {
				fmt.Fprintf(cmd.OutOrStdout(), "  [[%s]] at %d\n", s.Target, s.Start)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report suggestions without writing the note")
	return cmd
}
