package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vitasurvey/internal/cache"
	"vitasurvey/internal/repository"
)

func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <tree.yaml>",
		Short: "Replace the category tree in MongoDB and drop the cached copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tree, err := readTree(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, db, err := connectMongo(ctx, cfg)
			if err != nil {
				return err
			}
			defer client.Disconnect(ctx)

			if err := repository.NewCategoryRepo(db).ReplaceTree(ctx, tree); err != nil {
				return err
			}

			rdb := connectRedis(cfg)
			defer rdb.Close()
			if err := cache.NewTreeCache(rdb, cfg.TreeCacheTTL, cfg.CatalogPinTTL).Invalidate(ctx); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: tree cache not invalidated:", err)
			}

			report(cmd.OutOrStdout(), tree, cfg.Rules)
			fmt.Fprintln(cmd.OutOrStdout(), "seeded", args[0])
			return nil
		},
	}
}
