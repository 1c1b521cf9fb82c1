// Command backfill recomputes the cached totals columns of every stored
// document from its line items and duty lines, correcting rows written before
// an engine fix. Documents whose totals already match are left untouched.
// Usage: go run ./cmd/backfill [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"khata/internal/config"
	"khata/internal/domain"
	"khata/internal/logging"
	"khata/internal/repository/postgres"
	"khata/internal/totals"
)

const batchSize = 100

func main() {
	dryRun := flag.Bool("dry-run", false, "report differences without writing")
	flag.Parse()

	if err := run(*dryRun); err != nil {
		log.Fatal(err)
	}
}

func run(dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	docRepo := postgres.NewDocumentRepo(db)

	after := uuid.Nil
	scanned, changed := 0, 0
	for {
		docs, err := docRepo.ListBatch(ctx, after, batchSize)
		if err != nil {
			return fmt.Errorf("listing documents after %s: %w", after, err)
		}
		if len(docs) == 0 {
			break
		}

		for i := range docs {
			doc := &docs[i]
			scanned++
			if !recompute(doc) {
				continue
			}
			changed++
			logger.Info("totals differ",
				zap.Stringer("document_id", doc.ID),
				zap.String("number", doc.Number),
				zap.Stringer("grand_total", doc.GrandTotal))
			if dryRun {
				continue
			}
			if err := docRepo.Update(ctx, doc); err != nil {
				logger.Error("updating document", zap.Stringer("document_id", doc.ID), zap.Error(err))
			}
		}
		after = docs[len(docs)-1].ID
	}

	logger.Info("backfill complete",
		zap.Int("scanned", scanned),
		zap.Int("changed", changed),
		zap.Bool("dry_run", dryRun))
	return nil
}

// recompute rebuilds doc's totals from its line items with every duty line
// automatic, and reports whether any cached column changed.
func recompute(doc *domain.Document) bool {
	draft := &domain.Draft{
		GST:       domain.GSTConfig{Enabled: doc.GSTEnabled, Type: doc.GSTType.Normalize()},
		LineItems: doc.LineItems,
		Duties:    doc.Duties,
	}
	for i := range draft.Duties {
		draft.Duties[i].ManuallyOverridden = false
	}
	totals.Apply(draft, totals.NoChange())

	before := *doc
	doc.LineItems = draft.LineItems
	doc.Duties = draft.Duties
	doc.ApplyTotals(&draft.Totals)

	return !before.GrandTotal.Equal(doc.GrandTotal) ||
		!before.TaxableSubtotal.Equal(doc.TaxableSubtotal) ||
		!before.GSTTotal.Equal(doc.GSTTotal) ||
		!before.DutyTotal.Equal(doc.DutyTotal) ||
		!before.RoundOff.Equal(doc.RoundOff)
}
