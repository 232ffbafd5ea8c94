package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"greendrake/propdesk/internal/db"
	"greendrake/propdesk/internal/store"
)

func newEnsureIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes used by the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.DisconnectDB(mongoClient); err != nil {
					slog.Warn("error disconnecting from MongoDB", "error", err)
				}
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := store.NewPropertyStore(mongoDb).EnsureIndexes(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured on", store.PropertiesCollection)
			return nil
		},
	}
}
