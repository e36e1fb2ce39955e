package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		if migrateDown {
			log.Info().Msg("rolling back migrations")
			return store.MigrateDown()
		}
		log.Info().Msg("running migrations")
		if err := store.Migrate(); err != nil {
			return err
		}
		log.Info().Msg("migrations complete")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back all migrations")
}
