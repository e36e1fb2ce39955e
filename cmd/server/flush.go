package main

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var flushTokensCmd = &cobra.Command{
	Use:   "flush-tokens",
	Short: "Delete blacklist entries whose refresh tokens have expired",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.FlushExpiredTokens(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		log.Info().Int64("removed", removed).Msg("expired blacklist entries flushed")
		return nil
	},
}
