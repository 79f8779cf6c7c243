package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/sweepr/internal/plex"
)

var (
	cacheClearAll bool
	cacheKind     string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Response cache maintenance",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	Long:  "Removes expired entries, or every entry with --all. --kind limits removal to metadata or children responses.",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entries per response kind",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cachePruneCmd.Flags().BoolVar(&cacheClearAll, "all", false, "Remove every entry, not only expired ones")
	cachePruneCmd.Flags().StringVar(&cacheKind, "kind", "", "Only remove entries of this kind (metadata, children)")
}

// withCache opens the configured cache database for the duration of fn.
func withCache(ctx context.Context, fn func(*plex.Cache) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		return errors.New("cache is disabled in the configuration")
	}

	db, err := openCacheDB(ctx, cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	return fn(plex.NewCache(db))
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	kind, err := plex.ParseCacheKind(cacheKind)
	if err != nil {
		return err
	}

	return withCache(cmd.Context(), func(cache *plex.Cache) error {
		removed, err := cache.Prune(cmd.Context(), plex.PruneFilter{Kind: kind, All: cacheClearAll})
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]any{"kind": kind, "removed": removed})
		}
		scope := "all"
		if kind != "" {
			scope = string(kind)
		}
		fmt.Fprintf(stdout, "Removed %d cache entries (%s)\n", removed, scope)
		return nil
	})
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	return withCache(cmd.Context(), func(cache *plex.Cache) error {
		stats, err := cache.Stats(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(stats)
		}
		fmt.Fprintf(stdout, "%-10s %8s %8s %10s  %s\n", "KIND", "ENTRIES", "EXPIRED", "BYTES", "OLDEST")
		for _, s := range stats {
			oldest := "-"
			if s.Entries > 0 {
				oldest = s.Oldest.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(stdout, "%-10s %8d %8d %10d  %s\n", s.Kind, s.Entries, s.Expired, s.Bytes, oldest)
		}
		return nil
	})
}
