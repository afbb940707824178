// Package cmd implements the mangamux command line interface.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/mangamux/mangamux/internal/aggregator"
	"github.com/mangamux/mangamux/internal/config"
	"github.com/mangamux/mangamux/internal/provider"
	"github.com/mangamux/mangamux/internal/server"
	"github.com/mangamux/mangamux/internal/store"
	"github.com/mangamux/mangamux/internal/transport"
)

// CLI represents the complete command structure for the mangamux application
type CLI struct {
	// Global flags
	Listen      string `help:"HTTP listen address" default:""`
	StoreDBFile string `help:"Path to key-value store SQLite database file" default:""`

	Serve    ServeCmd    `cmd:"" help:"Run the aggregation HTTP server"`
	Search   SearchCmd   `cmd:"" help:"Search all providers and print the merged results"`
	Details  DetailsCmd  `cmd:"" help:"Fetch details for a global id (provider:rawId)"`
	Chapters ChaptersCmd `cmd:"" help:"List chapters for a global series id"`
	Pages    PagesCmd    `cmd:"" help:"List page images for a global chapter id"`
}

// ServeCmd runs the HTTP server.
type ServeCmd struct{}

// SearchCmd runs a one-shot multi-provider search.
type SearchCmd struct {
	Query     string   `arg:"" help:"Search query"`
	Page      int      `help:"Result page" default:"1"`
	Lang      string   `help:"Language filter (e.g. en)"`
	Providers []string `help:"Restrict to specific provider ids"`
}

// DetailsCmd fetches one canonical entry.
type DetailsCmd struct {
	ID string `arg:"" help:"Global id, provider:rawId"`
}

// ChaptersCmd lists chapters for a series.
type ChaptersCmd struct {
	ID    string `arg:"" help:"Global series id, provider:rawId"`
	Lang  string `help:"Language filter (e.g. en)"`
	Order string `help:"Chapter order: asc or desc" default:"asc"`
}

// PagesCmd lists a chapter's pages.
type PagesCmd struct {
	ID        string `arg:"" help:"Global chapter id, provider:rawId"`
	DataSaver bool   `help:"Prefer data-saver image variants"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("mangamux"),
		kong.Description("Aggregates manga metadata and chapters across content providers."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("No config file found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.Listen != "" {
		viper.Set("listen", cli.Listen)
	}
	if cli.StoreDBFile != "" {
		viper.Set("store.dbfile", cli.StoreDBFile)
	}
	config.InitConfig()
}

func initLogging() {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// newService builds the shared aggregation stack.
func newService() *aggregator.Service {
	client := transport.NewWithTimeout(config.RequestTimeout)
	registry := provider.DefaultRegistry(client)
	return aggregator.New(registry)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Run methods for each command

func (s *ServeCmd) Run() error {
	kv, err := store.OpenSQLite(config.StoreDBFile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = kv.Close() }()

	srv := server.New(newService(), kv)
	slog.Info("Starting server", "addr", config.ListenAddr)
	return srv.Run(config.ListenAddr)
}

func (s *SearchCmd) Run() error {
	resp := newService().SearchMulti(context.Background(), s.Query, aggregator.SearchOptions{
		Page:      s.Page,
		Lang:      s.Lang,
		Providers: s.Providers,
	})
	return printJSON(resp)
}

func (d *DetailsCmd) Run() error {
	entry, err := newService().Details(context.Background(), d.ID)
	if err != nil {
		return err
	}
	return printJSON(entry)
}

func (c *ChaptersCmd) Run() error {
	chapters, err := newService().Chapters(context.Background(), c.ID, provider.ChapterOptions{
		Lang:  c.Lang,
		Order: provider.Order(c.Order),
	})
	if err != nil {
		return err
	}
	return printJSON(chapters)
}

func (p *PagesCmd) Run() error {
	pages, err := newService().Pages(context.Background(), p.ID, provider.PageOptions{
		DataSaver: p.DataSaver,
	})
	if err != nil {
		return err
	}
	return printJSON(pages)
}
