// cmd/seeder/main.go
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ammerola/cultureconnect-be/internal/adapters/db"
	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/pkg/config"
	"github.com/ammerola/cultureconnect-be/internal/pkg/logger"
	"github.com/ammerola/cultureconnect-be/internal/workers"
)

const syllabusSummaryLen = 1000

// seederState remembers which files were already loaded, by content hash,
// so reruns only pick up new or changed files.
type seederState struct {
	Processed  map[string]string `json:"processed"` // file name -> sha256
	LastUpdate time.Time         `json:"last_update"`
}

func (s *seederState) seen(name, sum string) bool {
	return s.Processed[name] == sum
}

func (s *seederState) mark(name, sum string) {
	if s.Processed == nil {
		s.Processed = make(map[string]string)
	}
	s.Processed[name] = sum
	s.LastUpdate = time.Now()
}

type summary struct {
	products int
	courses  int
	slides   int
	syllabi  int
	skipped  []string
	failed   []string
}

func main() {
	var (
		dataDir   = flag.String("data", "./seed", "Directory containing catalog .xlsx workbooks")
		syllabi   = flag.String("syllabi", "", "Directory of syllabus PDFs named after their course id")
		stateFile = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Parse files without modifying the database")
		force     = flag.Bool("force", false, "Reload files that were already seeded")
		migrate   = flag.Bool("migrate", true, "Apply schema migrations before seeding")
		reset     = flag.Bool("reset", false, "Drop the schema and rebuild it before seeding, implies -force")
	)
	flag.Parse()

	log := logger.New(logger.Options{Level: *logLevel, Format: "text", Service: "seeder"})
	slog.SetDefault(log)

	cfg, err := config.Load(log)
	if err != nil {
		log.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	workbooks, err := filepath.Glob(filepath.Join(*dataDir, "*.xlsx"))
	if err != nil {
		log.Error("failed to list workbooks", slog.String("error", err.Error()))
		os.Exit(1)
	}
	var pdfs []string
	if *syllabi != "" {
		if pdfs, err = filepath.Glob(filepath.Join(*syllabi, "*.pdf")); err != nil {
			log.Error("failed to list syllabi", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	var state seederState
	if *reset && !*dryRun {
		*force = true
	}
	if !*force {
		if raw, err := os.ReadFile(*stateFile); err == nil {
			if err := json.Unmarshal(raw, &state); err != nil {
				log.Warn("ignoring unreadable state file", slog.String("error", err.Error()))
			}
		}
	}

	ctx := context.Background()
	dbCfg := &db.Config{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.Name,
		SSLMode:        cfg.Database.SSLMode,
		MaxConnections: 4,
		MinConnections: 1,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}

	var (
		products *db.ProductRepository
		courses  *db.CourseRepository
		showcase *db.ShowcaseRepository
	)
	if !*dryRun {
		if *reset {
			if err := resetSchema(ctx, dbCfg.URL(), log); err != nil {
				log.Error("failed to reset schema", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
		if *migrate || *reset {
			if err := db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{DatabaseURL: dbCfg.URL()}, log, 3); err != nil {
				log.Error("failed to run migrations", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
		database, err := db.NewDatabase(ctx, dbCfg, log)
		if err != nil {
			log.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()
		products = db.NewProductRepository(database, log)
		courses = db.NewCourseRepository(database, log)
		showcase = db.NewShowcaseRepository(database, log)
	}

	var sum summary
	for i, path := range workbooks {
		name := filepath.Base(path)
		fmt.Printf("PROGRESS: workbook %d/%d: %s\n", i+1, len(workbooks), name)

		data, err := os.ReadFile(path)
		if err != nil {
			sum.failed = append(sum.failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		hash := checksum(data)
		if state.seen(name, hash) {
			log.Info("skipping already seeded workbook", slog.String("file", name))
			continue
		}

		wb, err := workers.ParseCatalogWorkbook(data)
		if err != nil {
			sum.failed = append(sum.failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		for _, s := range wb.Skipped {
			sum.skipped = append(sum.skipped, fmt.Sprintf("%s/%s row %d: %s", name, s.Sheet, s.Row, s.Error))
		}

		if *dryRun {
			sum.products += len(wb.Products)
			sum.courses += len(wb.Courses)
			sum.slides += len(wb.Slides)
			continue
		}

		if err := seedWorkbook(ctx, wb, products, courses, showcase, &sum); err != nil {
			log.Error("failed to seed workbook", slog.String("file", name), slog.String("error", err.Error()))
			sum.failed = append(sum.failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		state.mark(name, hash)
	}

	for _, path := range pdfs {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			sum.failed = append(sum.failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		hash := checksum(data)
		if state.seen(name, hash) {
			continue
		}

		text, err := workers.ExtractPDFText(data)
		if err != nil {
			sum.failed = append(sum.failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if *dryRun {
			sum.syllabi++
			continue
		}

		courseID := domain.DeriveID(strings.TrimSuffix(name, filepath.Ext(name)))
		key := "seed/" + name
		if err := courses.UpdateSyllabus(ctx, courseID, key, workers.Summarize(text, syllabusSummaryLen)); err != nil {
			sum.failed = append(sum.failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		sum.syllabi++
		state.mark(name, hash)
	}

	if !*dryRun {
		raw, _ := json.MarshalIndent(state, "", "  ")
		if err := os.WriteFile(*stateFile, raw, 0o644); err != nil {
			log.Warn("failed to save state", slog.String("error", err.Error()))
		}
	}

	printSummary(sum, *dryRun)
	log.Info("seed operation completed",
		slog.Int("products", sum.products),
		slog.Int("courses", sum.courses),
		slog.Int("slides", sum.slides),
		slog.Int("syllabi", sum.syllabi),
		slog.Int("skipped_rows", len(sum.skipped)),
		slog.Int("failed_files", len(sum.failed)))

	if len(sum.failed) > 0 {
		os.Exit(1)
	}
}

func seedWorkbook(ctx context.Context, wb *workers.Workbook, products *db.ProductRepository,
	courses *db.CourseRepository, showcase *db.ShowcaseRepository, sum *summary) error {
	if len(wb.Products) > 0 {
		n, err := products.UpsertBatch(ctx, wb.Products)
		if err != nil {
			return fmt.Errorf("products: %w", err)
		}
		sum.products += n
	}
	if len(wb.Courses) > 0 {
		n, err := courses.UpsertBatch(ctx, wb.Courses)
		if err != nil {
			return fmt.Errorf("courses: %w", err)
		}
		sum.courses += n
	}
	if len(wb.Slides) > 0 {
		n, err := showcase.UpsertBatch(ctx, wb.Slides)
		if err != nil {
			return fmt.Errorf("showcase: %w", err)
		}
		sum.slides += n
	}
	return nil
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func printSummary(sum summary, dryRun bool) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEED SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Products: %d\n", sum.products)
	fmt.Printf("Courses:  %d\n", sum.courses)
	fmt.Printf("Slides:   %d\n", sum.slides)
	fmt.Printf("Syllabi:  %d\n", sum.syllabi)

	if len(sum.skipped) > 0 {
		fmt.Printf("\nSkipped rows (%d):\n", len(sum.skipped))
		for _, s := range sum.skipped {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(sum.failed) > 0 {
		slices.Sort(sum.failed)
		fmt.Printf("\nFailed files (%d):\n", len(sum.failed))
		for _, f := range sum.failed {
			fmt.Printf("  - %s\n", f)
		}
	}
	if dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

// resetSchema rolls every migration back and applies them again.
func resetSchema(ctx context.Context, databaseURL string, log *slog.Logger) error {
	m, err := db.NewMigrator(&db.MigrationConfig{DatabaseURL: databaseURL}, log)
	if err != nil {
		return err
	}
	defer m.Close()

	if version, dirty, err := m.Version(); err == nil {
		log.Warn("resetting schema", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}

	return m.Reset(ctx)
}
