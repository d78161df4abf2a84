package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
)

// ResetDB drops the kitchen database - USE WITH CAUTION
func ResetDB(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Infof("⚠️  DANGER: This will drop the kitchen database!")
	logger.Infof("⚠️  This action cannot be undone!")

	client, db, err := connect(ctx, config, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Dropping database", "database", db.Name())
	if err := db.Drop(ctx); err != nil {
		return fmt.Errorf("drop database %s: %w", db.Name(), err)
	}

	logger.Info("Database dropped", "database", db.Name())
	return nil
}
