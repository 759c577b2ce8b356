package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"srmap/internal/config"
	"srmap/internal/crawler"
	"srmap/internal/extractor"
	"srmap/internal/pipeline"
	"srmap/internal/remap"
	"srmap/internal/resolver"
	"srmap/internal/storage"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "srmap",
		Short:         "Replace SR placeholders with names from Minecraft mapping files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cfgPath  string
	goalFlag string
	dbPath   string
	inPlace  bool
	dump     bool
)

// errFailed is returned when at least one file or instruction failed; the
// details have already been printed.
var errFailed = errors.New("remapping finished with failures")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "srmap.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&goalFlag, "goal", "g", "", "Naming goal: original, obfuscated, community or community_members")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the run journal (SQLite); overrides the journal setting")

	remapSourcesCmd.Flags().BoolVar(&inPlace, "in-place", false, "Rewrite the source roots directly instead of copies")
	lookupCmd.Flags().BoolVar(&dump, "dump", false, "Print the mapping entries of the owner")

	rootCmd.AddCommand(remapSourcesCmd)
	rootCmd.AddCommand(remapClassesCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(reportCmd)
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if goalFlag != "" {
		g, err := resolver.ParseGoal(goalFlag)
		if err != nil {
			return nil, nil, err
		}
		cfg.Goal = g
	}
	if cmd.Flags().Changed("db") {
		cfg.Journal = dbPath
	}
	return cfg, newLogger(cfg.LogLevel), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// initRewriter loads the configured mapping files and binds them to the goal.
func initRewriter(cfg *config.Config, logger *slog.Logger) (*remap.Rewriter, *resolver.Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	tbl, err := pipeline.LoadMappings(pipeline.MappingFiles{
		Primary:          cfg.Mappings.Primary,
		CommunityClasses: cfg.Mappings.CommunityClasses,
		CommunityMembers: cfg.Mappings.CommunityMembers,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load mappings: %w", err)
	}
	r := resolver.New(tbl)
	return remap.New(r, cfg.Goal), r, nil
}

// initJournal opens the run journal, or returns nil when none is configured.
func initJournal(cfg *config.Config) (storage.Journal, error) {
	if cfg.Journal == "" {
		return nil, nil
	}
	store, err := storage.NewSQLiteStore(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", cfg.Journal, err)
	}
	return store, nil
}

func layoutOf(cfg *config.Config) pipeline.SourceLayout {
	return pipeline.SourceLayout{
		BaseDir:  cfg.Sources.BaseDir,
		BuildDir: cfg.Sources.BuildDir,
		Out:      cfg.Sources.Out,
	}
}

func rootsOf(args, configured []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(configured) > 0 {
		return configured, nil
	}
	return nil, errors.New("no roots given and none configured")
}

// remapAndReport runs the remapper over files, journals the run and prints a summary.
func remapAndReport(ctx context.Context, name string, cfg *config.Config, logger *slog.Logger, rw *remap.Rewriter, files []string, kind pipeline.FileKind) error {
	journal, err := initJournal(cfg)
	if err != nil {
		return err
	}
	var runID string
	if journal != nil {
		defer journal.Close()
		if runID, err = journal.StartRun(ctx, name, cfg.Goal.String()); err != nil {
			return err
		}
	}

	out.step("🚀", "Remapping %d %s files to %s...", len(files), kind, cfg.Goal)
	r := pipeline.NewRemapper(rw, pipeline.Options{Workers: cfg.Workers, Logger: logger})
	results, err := r.RemapFiles(ctx, files, kind)
	if err != nil {
		return err
	}

	if journal != nil {
		if err := pipeline.JournalResults(ctx, journal, runID, results); err != nil {
			return err
		}
	}

	for _, res := range results {
		if res.Err != nil {
			out.step("❌", "%s: %v", res.Path, res.Err)
		}
	}
	s := pipeline.Summarize(results)
	out.step("✅", "%d files, %d changed, %d failed", s.Files, s.Changed, s.Failed)
	if runID != "" {
		out.step("💾", "Run %s journaled in %s", runID, cfg.Journal)
	}
	if s.Failed > 0 {
		return errFailed
	}
	return nil
}

var remapSourcesCmd = &cobra.Command{
	Use:   "remap-sources [roots...]",
	Short: "Copy source roots into the build directory and replace instruction literals",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		roots, err := rootsOf(args, cfg.Sources.Roots)
		if err != nil {
			return err
		}
		rw, _, err := initRewriter(cfg, logger)
		if err != nil {
			return err
		}

		if !inPlace && !cfg.Sources.InPlace {
			out.step("📂", "Copying %d source roots...", len(roots))
			if roots, err = layoutOf(cfg).CopySources(roots); err != nil {
				return err
			}
			for _, root := range roots {
				logger.Info("copied source root", "target", root)
			}
		}

		files, err := crawler.NewCrawler(cfg.Sources.Extensions...).Collect(roots)
		if err != nil {
			return fmt.Errorf("failed to crawl sources: %w", err)
		}
		return remapAndReport(cmd.Context(), cmd.Name(), cfg, logger, rw, files, pipeline.KindSource)
	},
}

var remapClassesCmd = &cobra.Command{
	Use:   "remap-classes [roots...]",
	Short: "Replace instructions in the string constants of compiled classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		roots, err := rootsOf(args, cfg.Classes.Roots)
		if err != nil {
			return err
		}
		rw, _, err := initRewriter(cfg, logger)
		if err != nil {
			return err
		}

		files, err := crawler.NewCrawler(".class").Collect(roots)
		if err != nil {
			return fmt.Errorf("failed to crawl classes: %w", err)
		}
		return remapAndReport(cmd.Context(), cmd.Name(), cfg, logger, rw, files, pipeline.KindClass)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "List and resolve the instructions in Java string literals without writing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		roots, err := rootsOf(args, cfg.Sources.Roots)
		if err != nil {
			return err
		}
		rw, _, err := initRewriter(cfg, logger)
		if err != nil {
			return err
		}

		ext, err := extractor.NewExtractor("java")
		if err != nil {
			return err
		}
		files, err := crawler.NewCrawler(".java").Collect(roots)
		if err != nil {
			return fmt.Errorf("failed to crawl sources: %w", err)
		}

		findings, err := pipeline.Scan(cmd.Context(), ext, rw, files)
		if err != nil {
			return err
		}

		failed := 0
		for _, f := range findings {
			if f.Err != nil {
				failed++
				fmt.Printf("%s:%d:%d: %s: %v\n", f.File, f.Line, f.Column, f.Instruction.Text, f.Err)
				continue
			}
			fmt.Printf("%s:%d:%d: %s -> %s\n", f.File, f.Line, f.Column, f.Instruction.Text, f.Resolved)
		}
		out.step("🔍", "%d instructions in %d files, %d unresolved", len(findings), len(files), failed)
		if failed > 0 {
			return errFailed
		}
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:       "lookup class|method|field <reference>",
	Short:     "Resolve a single reference",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"class", "method", "field"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		kind, owner, err := parseLookup(args[0], args[1])
		if err != nil {
			return err
		}
		_, r, err := initRewriter(cfg, logger)
		if err != nil {
			return err
		}

		if dump {
			dumpEntries(r, owner)
		}

		name, err := r.Resolve(kind, args[1], cfg.Goal)
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	},
}

// parseLookup returns the lookup kind and the owning class of a reference.
func parseLookup(kind, ref string) (resolver.Kind, string, error) {
	switch strings.ToLower(kind) {
	case "class":
		c, err := resolver.ParseClassRef(ref)
		return resolver.KindClass, c.Name, err
	case "method":
		m, err := resolver.ParseMethodRef(ref)
		return resolver.KindMethod, m.Owner, err
	case "field":
		f, err := resolver.ParseFieldRef(ref)
		return resolver.KindField, f.Owner, err
	}
	return 0, "", fmt.Errorf("unknown lookup kind %q (want class, method or field)", kind)
}

func dumpEntries(r *resolver.Resolver, owner string) {
	sc := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
	primary, ok := r.Table().Original(owner)
	if !ok {
		fmt.Printf("%s: no primary entry\n", owner)
		return
	}
	fmt.Printf("primary entry of %s:\n", owner)
	sc.Dump(primary)
	if community, ok := r.Table().Community(primary.Name); ok {
		fmt.Printf("community entry of %s:\n", primary.Name)
		sc.Dump(community)
	}
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [dirs...]",
	Short: "Delete copied source directories from the build directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		removed, err := layoutOf(cfg).Cleanup(args...)
		for _, dir := range removed {
			out.step("🧹", "Removed %s", dir)
		}
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			out.step("✨", "Nothing to clean")
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Show a journaled run (the latest by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		journal, err := initJournal(cfg)
		if err != nil {
			return err
		}
		if journal == nil {
			return errors.New("no journal configured (set journal or pass --db)")
		}
		defer journal.Close()

		ctx := cmd.Context()
		id := ""
		if len(args) > 0 {
			id = args[0]
		} else {
			latest, err := journal.LatestRun(ctx)
			if err != nil {
				return err
			}
			id = latest.ID
		}

		run, files, err := journal.GetRun(ctx, id)
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: %s (%s)\n", run.ID, run.Command, run.Goal)
		fmt.Printf("Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		if !run.FinishedAt.IsZero() {
			fmt.Printf("Duration: %v\n", run.FinishedAt.Sub(run.StartedAt))
		}
		fmt.Printf("Files: %d, changed: %d, failed: %d\n", run.Files, run.Changed, run.Failed)
		for _, f := range files {
			switch {
			case f.Error != "":
				fmt.Printf("  FAIL %s: %s\n", f.Path, f.Error)
			case f.Changed:
				fmt.Printf("  ok   %s (%d)\n", f.Path, f.Replaced)
			}
		}
		return nil
	},
}
