package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mathforge-ai/mathforge/pkg/cache"
	"github.com/mathforge-ai/mathforge/pkg/config"
)

func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the durable response cache",
	}

	openCache := func() (*cache.Cache, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if !cfg.Cache.Persistent {
			return nil, fmt.Errorf("cache is not persistent; nothing on disk at %q", cfg.Cache.Dir)
		}
		return cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL, cache.WithDurableDir(cfg.Cache.Dir))
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show durable cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			total, expired, err := c.DirStats()
			if err != nil {
				return err
			}
			fmt.Printf("Entries: %d\nExpired: %d\n", total, expired)
			return nil
		},
	}

	var expiredOnly bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			if err := c.Clear(expiredOnly); err != nil {
				return err
			}
			if expiredOnly {
				fmt.Println("Expired cache entries cleared.")
			} else {
				fmt.Println("All cache entries cleared.")
			}
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only clear expired entries")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mathforge.yaml", "path to config file")
	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
