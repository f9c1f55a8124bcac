package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/iyhunko/apm-demo-service/internal/config"
	"github.com/iyhunko/apm-demo-service/internal/logger"
	"github.com/iyhunko/apm-demo-service/internal/repository/sql"
	"github.com/iyhunko/apm-demo-service/internal/service"
)

// init-db creates the products table and seeds it when empty.
func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)

	ctx := context.Background()
	db, err := sql.OpenDB(conf.Database)
	handleErr("opening database", err)
	defer db.Close()

	seeder := service.NewSeeder(sql.NewProductRepository(db, conf.Database.AcquireTimeout))
	result, err := service.InitDatabase(ctx, func() error { return sql.RunMigrations(ctx, db, conf.Database.AcquireTimeout) }, seeder)
	handleErr("initializing database", err)

	slog.Info("Database initialized",
		slog.String("host", conf.Database.Host),
		slog.String("database", conf.Database.Name),
		slog.Int("inserted", result.Inserted),
		slog.Int("existing", result.Existing))
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
