package main

import (
	"net/http"

	handler "zoid-backend/api"
	"zoid-backend/pkg/config"
	"zoid-backend/pkg/database"

	"go.uber.org/zap"
)

// Local entry point. Serves the same router the serverless function
// builds, on PORT.
func main() {
	cfg, err := config.GetCached()
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	logger := handler.NewLogger(cfg)
	defer logger.Sync()

	db, err := database.GetDatabase(database.DatabaseConfig{
		PostgresDSN: cfg.PostgresDSN,
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		UseMemoryDB: cfg.PostgresDSN == "" && cfg.SupabaseURL == "" && cfg.IsDevelopment(),
		Debug:       cfg.Debug,
	}, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	router := handler.NewRouter(cfg, db, logger)

	logger.Info("listening", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
