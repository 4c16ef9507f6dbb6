package bootstrap

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gardenstate-security/website-api/internal/archive"
	appconfig "github.com/gardenstate-security/website-api/internal/config"
	"github.com/gardenstate-security/website-api/internal/leads"
	"github.com/gardenstate-security/website-api/pkg/logging"
)

// ConnectPostgresPool opens a pgx pool or returns nil when the URL is empty
// or the database is unreachable.
func ConnectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// BuildArchive combines the Postgres archive (when a pool is available) and
// the S3 archive (when a bucket and client are configured). With neither it
// falls back to an in-memory archive outside production, and nil otherwise.
func BuildArchive(cfg *appconfig.Config, pool *pgxpool.Pool, s3Client archive.S3API, logger *logging.Logger) leads.Archive {
	if logger == nil {
		logger = logging.Default()
	}
	var archives leads.MultiArchive
	if pool != nil {
		logger.Info("submission archive enabled", "backend", "postgres")
		archives = append(archives, leads.NewPostgresArchive(pool))
	}
	if cfg != nil && s3Client != nil && strings.TrimSpace(cfg.ArchiveBucket) != "" {
		logger.Info("submission archive enabled", "backend", "s3", "bucket", cfg.ArchiveBucket)
		archives = append(archives, archive.NewStore(s3Client, cfg.ArchiveBucket, logger))
	}
	switch len(archives) {
	case 0:
	case 1:
		return archives[0]
	default:
		return archives
	}
	if cfg != nil && !cfg.IsProduction() {
		logger.Info("submission archive enabled", "backend", "memory")
		return leads.NewInMemoryArchive()
	}
	logger.Warn("submission archive disabled, neither DATABASE_URL nor ARCHIVE_BUCKET set")
	return nil
}
