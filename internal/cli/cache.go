package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/survfit/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the model and artifact cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached model and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			var n int
			switch cfg.Backend() {
			case "none":
				printInfo("Caching is disabled")
				return nil
			case "redis":
				rc, err := cache.NewRedisCache(cmd.Context(), cache.RedisConfig{URL: cfg.RedisURL, Prefix: cfg.RedisPrefix})
				if err != nil {
					return err
				}
				defer rc.Close()
				if n, err = rc.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("clear redis cache: %w", err)
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Prefix: %s", cfg.RedisPrefix)
			default:
				fc, err := cache.NewFileCache(cfg.CacheDir)
				if err != nil {
					return err
				}
				if n, err = fc.Clear(); err != nil {
					return fmt.Errorf("clear file cache: %w", err)
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries from the file cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Backend() != "file" {
				printWarning("Prune only applies to the file cache (backend: %s)", cfg.Backend())
				return nil
			}
			fc, err := cache.NewFileCache(cfg.CacheDir)
			if err != nil {
				return err
			}
			n, err := fc.Prune()
			if err != nil {
				return fmt.Errorf("prune file cache: %w", err)
			}
			printSuccess("Pruned %d expired entries", n)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.CacheDir)
			return nil
		},
	}
}
