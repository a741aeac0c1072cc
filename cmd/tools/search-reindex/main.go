// cmd/tools/search-reindex/main.go
//
// Rebuilds the lender search index from Postgres. Run after bulk catalog
// imports or after changing the index mapping.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"lending-ops/internal/common/config"
	"lending-ops/internal/common/database"
	"lending-ops/internal/common/logger"
	"lending-ops/internal/models"
	"lending-ops/internal/search"
	"lending-ops/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults to configs/config.yaml lookup)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall reindex timeout")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	if !cfg.Database.Elasticsearch.Enabled {
		fmt.Fprintln(os.Stderr, "elasticsearch is disabled in config, nothing to reindex")
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, "console")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.WithError(err).Error("postgres connection failed", nil)
		os.Exit(1)
	}
	defer pg.Close()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		log.WithError(err).Error("elasticsearch connection failed", nil)
		os.Exit(1)
	}

	lenders := store.NewLenderStore(pg.GetDB(), log)
	svc := search.NewService(es, cfg.Database.Elasticsearch.Index, log)

	catalogs := make(map[models.LoanType][]models.LenderRow)
	for _, loanType := range store.LoanTypes() {
		rows, err := lenders.ListActive(ctx, loanType)
		if err != nil {
			log.WithError(err).Error("catalog fetch failed", map[string]interface{}{
				"loanType": loanType,
			})
			os.Exit(1)
		}
		catalogs[loanType] = rows
	}

	indexed, err := svc.ReindexAll(ctx, catalogs)
	if err != nil {
		log.WithError(err).Error("reindex failed", nil)
		os.Exit(1)
	}

	log.Info("reindex complete", map[string]interface{}{
		"indexed": indexed,
		"index":   cfg.Database.Elasticsearch.Index,
	})
}
