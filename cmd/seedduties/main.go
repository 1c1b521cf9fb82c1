// Command seedduties loads a tenant's duty and tax master from an Excel sheet.
//
// The first row is a header. Columns, in order: name, kind, gst_head,
// calc_method, rate_percent, fixed_amount, apply_on, is_default. Row order
// becomes the application order.
//
// Usage: go run ./cmd/seedduties -tenant <uuid> -file duties.xlsx [-sheet Duties] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"khata/internal/config"
	"khata/internal/domain"
	"khata/internal/logging"
	"khata/internal/repository/postgres"
)

const (
	colName = iota
	colKind
	colGSTHead
	colCalcMethod
	colRatePercent
	colFixedAmount
	colApplyOn
	colIsDefault
)

func main() {
	tenant := flag.String("tenant", "", "tenant UUID the ledgers belong to")
	file := flag.String("file", "duties.xlsx", "path to the Excel workbook")
	sheet := flag.String("sheet", "", "sheet name (default: first sheet)")
	dryRun := flag.Bool("dry-run", false, "parse and print without writing")
	flag.Parse()

	if err := run(*tenant, *file, *sheet, *dryRun); err != nil {
		log.Fatal(err)
	}
}

func run(tenant, file, sheet string, dryRun bool) error {
	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		return fmt.Errorf("invalid -tenant %q: %w", tenant, err)
	}

	f, err := excelize.OpenFile(file)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ledgers, err := readLedgers(f, sheet, tenantID)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if dryRun {
		for i := range ledgers {
			l := &ledgers[i]
			logger.Info("ledger",
				zap.Int("order", l.SortOrder),
				zap.String("name", l.Name),
				zap.String("kind", string(l.Kind)),
				zap.String("calc_method", string(l.CalcMethod)),
				zap.Stringer("rate_percent", l.RatePercent),
				zap.Stringer("fixed_amount", l.FixedAmount),
				zap.Bool("default", l.IsDefault))
		}
		return nil
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	repo := postgres.NewDutyLedgerRepo(db)
	for i := range ledgers {
		if err := repo.Upsert(ctx, &ledgers[i]); err != nil {
			return fmt.Errorf("upserting ledger %q: %w", ledgers[i].Name, err)
		}
	}
	logger.Info("duty ledgers seeded", zap.Stringer("tenant_id", tenantID), zap.Int("count", len(ledgers)))
	return nil
}

// readLedgers parses every data row of the sheet. Blank rows are skipped; any
// other malformed row fails the whole import.
func readLedgers(f *excelize.File, sheet string, tenantID uuid.UUID) ([]domain.DutyLedger, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	var ledgers []domain.DutyLedger
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[colName]) == "" {
			continue
		}
		l, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		l.TenantID = tenantID
		l.SortOrder = len(ledgers) + 1
		ledgers = append(ledgers, l)
	}
	return ledgers, nil
}

func parseRow(row []string) (domain.DutyLedger, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	l := domain.DutyLedger{
		Name:       cell(colName),
		Kind:       domain.DutyKind(strings.ToLower(cell(colKind))),
		CalcMethod: domain.CalcMethod(strings.ToLower(cell(colCalcMethod))),
		ApplyOn:    domain.ApplyOn(strings.ToLower(cell(colApplyOn))),
	}
	switch l.Kind {
	case domain.DutyKindCharge, domain.DutyKindDeduction, domain.DutyKindGSTComponent:
	default:
		return l, fmt.Errorf("unknown kind %q", cell(colKind))
	}
	switch l.CalcMethod {
	case domain.CalcMethodPercentage, domain.CalcMethodFixed, domain.CalcMethodBoth:
	case "":
		l.CalcMethod = domain.CalcMethodPercentage
	default:
		return l, fmt.Errorf("unknown calc_method %q", cell(colCalcMethod))
	}
	switch l.ApplyOn {
	case domain.ApplyOnTaxableSubtotal, domain.ApplyOnNetTotal:
	case "":
		l.ApplyOn = domain.ApplyOnTaxableSubtotal
	default:
		return l, fmt.Errorf("unknown apply_on %q", cell(colApplyOn))
	}

	if head := strings.ToUpper(cell(colGSTHead)); head != "" {
		h := domain.GSTHead(head)
		switch h {
		case domain.GSTHeadCGST, domain.GSTHeadSGST, domain.GSTHeadIGST:
			l.GSTHead = &h
		default:
			return l, fmt.Errorf("unknown gst_head %q", cell(colGSTHead))
		}
	}

	var err error
	if l.RatePercent, err = parseAmount(cell(colRatePercent)); err != nil {
		return l, fmt.Errorf("rate_percent: %w", err)
	}
	if l.FixedAmount, err = parseAmount(cell(colFixedAmount)); err != nil {
		return l, fmt.Errorf("fixed_amount: %w", err)
	}
	if v := cell(colIsDefault); v != "" {
		if l.IsDefault, err = strconv.ParseBool(strings.ToLower(v)); err != nil {
			return l, fmt.Errorf("is_default: %w", err)
		}
	}
	return l, nil
}

// parseAmount reads a cell that may be blank or carry a trailing percent sign.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "%")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
