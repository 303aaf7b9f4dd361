package app

import (
	"context"
	"fmt"
	"log/slog"

	"ss12000-mock/internal/service/provision"
)

// provisionFixture loads the fixture at path. Reloading the same file on a
// persistent backend updates records in place.
func provisionFixture(ctx context.Context, loader *provision.Loader, path string, logger *slog.Logger) error {
	rep, err := loader.LoadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("provision %s: %w", path, err)
	}
	logger.Info("fixture provisioned",
		"path", path, "inserted", rep.Inserted, "updated", rep.Updated, "deleted", rep.Deleted)
	return nil
}
