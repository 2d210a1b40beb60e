package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"scavenger/internal/config"
	"scavenger/internal/database"
	"scavenger/internal/service"
	"scavenger/internal/storage"
	"scavenger/migrations"
	"time"

	flag "github.com/spf13/pflag"
)

type options struct {
	file      string
	clear     bool
	yes       bool
	s3Key     string
	s3        storage.S3Config
	s3Prefix  string
	uploadOff bool
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	command := os.Args[1]
	flags := flag.NewFlagSet(command, flag.ExitOnError)
	opts := options{}
	flags.StringVarP(&opts.file, "file", "f", "", "Backup file path (export default: backup_YYYYMMDD_HHMMSS.json)")
	flags.BoolVar(&opts.clear, "clear", false, "Clear existing data before import (WARNING: destructive)")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "Do not ask before clearing data")
	flags.StringVar(&opts.s3.Bucket, "s3-bucket", cfg.BackupS3Bucket, "S3 bucket to upload exports to or import from")
	flags.StringVar(&opts.s3.Region, "s3-region", cfg.BackupS3Region, "S3 region")
	flags.StringVar(&opts.s3.Endpoint, "s3-endpoint", cfg.BackupS3Endpoint, "S3 compatible endpoint URL, e.g. MinIO")
	flags.BoolVar(&opts.s3.PathStyle, "s3-path-style", cfg.BackupS3PathStyle, "Use path style S3 addressing")
	flags.StringVar(&opts.s3Prefix, "s3-prefix", cfg.BackupS3Prefix, "Key prefix for uploaded exports")
	flags.StringVar(&opts.s3Key, "s3-key", "", "Object key to import instead of a local file")
	flags.BoolVar(&opts.uploadOff, "no-upload", false, "Skip the S3 upload even when a bucket is configured")

	if command != "export" && command != "import" {
		printUsage()
		os.Exit(1)
	}
	flags.Parse(os.Args[2:])

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(migrations.Source(cfg.MigrationsPath)); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	backupService := service.NewBackupService(db)
	ctx := context.Background()

	switch command {
	case "export":
		err = handleExport(ctx, backupService, opts)
	case "import":
		err = handleImport(ctx, backupService, opts)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, opts options) error {
	outputPath := opts.file
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Printf("Exporting database to: %s", outputPath)
	if err := backupService.Export(outputPath); err != nil {
		return err
	}

	fileInfo, err := os.Stat(outputPath)
	if err != nil {
		return err
	}
	log.Printf("Export complete! File size: %.2f MB", float64(fileInfo.Size())/1024/1024)

	if opts.s3.Bucket == "" || opts.uploadOff {
		return nil
	}

	store, err := storage.NewS3Store(ctx, opts.s3)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return err
	}
	key := storage.ObjectKey(opts.s3Prefix, outputPath)
	if err := store.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return err
	}
	log.Printf("Uploaded export to s3://%s/%s", opts.s3.Bucket, key)
	return nil
}

func handleImport(ctx context.Context, backupService *service.BackupService, opts options) error {
	var reader io.ReadCloser
	switch {
	case opts.s3Key != "":
		store, err := storage.NewS3Store(ctx, opts.s3)
		if err != nil {
			return err
		}
		log.Printf("Importing database from: s3://%s/%s", opts.s3.Bucket, opts.s3Key)
		reader, err = store.Download(ctx, opts.s3Key)
		if err != nil {
			return err
		}
	case opts.file != "":
		file, err := os.Open(opts.file)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		log.Printf("Importing database from: %s", opts.file)
		reader = file
	default:
		return fmt.Errorf("--file or --s3-key is required")
	}
	defer reader.Close()

	if opts.clear {
		if !opts.yes {
			fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
			var confirmation string
			fmt.Scanln(&confirmation)
			if confirmation != "yes" {
				log.Println("Import cancelled")
				return nil
			}
		}

		log.Println("Clearing existing data...")
		if err := backupService.Clear(); err != nil {
			return err
		}
	}

	if err := backupService.ImportFromReader(reader); err != nil {
		return err
	}

	log.Println("Import complete!")
	return nil
}

func printUsage() {
	fmt.Println("Scavenger Hunt Database Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export database to JSON file")
	fmt.Println("  backup import [options]    Import database from JSON file")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -f, --file <file>        Backup file path")
	fmt.Println("      --clear              Clear existing data before import (WARNING: destructive)")
	fmt.Println("  -y, --yes                Do not ask before clearing data")
	fmt.Println("      --s3-bucket <name>   Upload exports to, or import from, this bucket")
	fmt.Println("      --s3-key <key>       Import this object instead of a local file")
	fmt.Println("      --s3-prefix <path>   Key prefix for uploaded exports (default: backups/)")
	fmt.Println("      --s3-region <name>   S3 region (default: us-east-1)")
	fmt.Println("      --s3-endpoint <url>  S3 compatible endpoint, e.g. MinIO")
	fmt.Println("      --s3-path-style      Use path style addressing")
	fmt.Println("      --no-upload          Keep the export local even when a bucket is set")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  backup export --file nightly.json")
	fmt.Println("  backup import --file backup.json --clear")
	fmt.Println("  backup import --s3-bucket open-day --s3-key backups/backup.json")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE            Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH            SQLite database path (default: ./scavenger_hunt.db)")
	fmt.Println("  DATABASE_URL       PostgreSQL or MySQL connection URL")
	fmt.Println("  BACKUP_S3_BUCKET   Default for --s3-bucket")
}
