package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vitasurvey/internal/model"
	"vitasurvey/internal/repository"
	"vitasurvey/internal/service"
)

func TokenCmd() *cobra.Command {
	var (
		ttl    time.Duration
		gender string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "token <member-id>",
		Short: "Mint a member token signed with JWT_SECRET",
		Long: "Mint a member token signed with JWT_SECRET. With --gender or --name the member\n" +
			"profile is written to MongoDB first.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			memberID := strings.TrimSpace(args[0])
			if memberID == "" {
				return errors.New("member id must not be empty")
			}

			if gender != "" || name != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
				defer cancel()
				client, db, err := connectMongo(ctx, cfg)
				if err != nil {
					return err
				}
				defer client.Disconnect(ctx)
				member := &model.Member{ID: memberID, Name: name, Gender: gender}
				if err := repository.NewMemberRepo(db).Upsert(ctx, member); err != nil {
					return err
				}
			}

			resp, err := service.NewAuthService(cfg.JWTSecret).GenerateMemberToken(memberID, ttl)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&gender, "gender", "", "gender on file for the member")
	cmd.Flags().StringVar(&name, "name", "", "member display name")
	return cmd
}
