package settings

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/nasik90/listmarket/internal/app/nowpayments"
)

type Options struct {
	ServerAddress   string
	LogLevel        string
	DatabaseURI     string
	MigrationsDir   string
	DBFile          string
	CatalogFile     string
	DataDir         string
	PaymentsAPIKey  string
	PaymentsBaseURL string
	IPNSecret       string
	WebhookURL      string
	JWTSecret       string
	AdminLogin      string
	AdminHash       string
	PollInterval    time.Duration
	ShutdownTimeout time.Duration
}

// ParseFlags fills o from flags, then lets environment variables override
// them. Variables from a .env file in the working directory are loaded first
// and never replace variables already set in the environment. The returned
// error lists settings that were ignored; o is usable either way.
func ParseFlags(o *Options) error {
	var errs []error
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("load .env: %w", err))
	}

	flag.StringVar(&o.ServerAddress, "a", ":8000", "address and port to run server")
	flag.StringVar(&o.LogLevel, "l", "info", "log level")
	flag.StringVar(&o.DatabaseURI, "d", "", "database connection string, file storage is used when empty")
	flag.StringVar(&o.MigrationsDir, "m", "internal/migrations/pg", "directory with database migrations")
	flag.StringVar(&o.DBFile, "f", "db/sales_db.json", "path of the JSON document store")
	flag.StringVar(&o.CatalogFile, "c", "", "product catalog YAML, built-in catalog when empty")
	flag.StringVar(&o.DataDir, "data", "fichiers", "directory with product line files")
	flag.DurationVar(&o.PollInterval, "poll", time.Minute, "payment status poll interval, 0 disables polling")
	flag.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	flag.Parse()

	o.PaymentsBaseURL = nowpayments.DefaultBaseURL

	if serverAddress := os.Getenv("RUN_ADDRESS"); serverAddress != "" {
		o.ServerAddress = serverAddress
	}
	if envLogLevel := os.Getenv("LOG_LEVEL"); envLogLevel != "" {
		o.LogLevel = envLogLevel
	}
	if databaseURI := os.Getenv("DATABASE_URI"); databaseURI != "" {
		o.DatabaseURI = databaseURI
	}
	if migrationsDir := os.Getenv("MIGRATIONS_DIR"); migrationsDir != "" {
		o.MigrationsDir = migrationsDir
	}
	if dbFile := os.Getenv("DB_FILE"); dbFile != "" {
		o.DBFile = dbFile
	}
	if catalogFile := os.Getenv("CATALOG_FILE"); catalogFile != "" {
		o.CatalogFile = catalogFile
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		o.DataDir = dataDir
	}
	if baseURL := os.Getenv("NOWPAYMENTS_BASE_URL"); baseURL != "" {
		o.PaymentsBaseURL = baseURL
	}
	o.PaymentsAPIKey = os.Getenv("NOWPAYMENTS_API_KEY")
	o.IPNSecret = os.Getenv("NOWPAYMENTS_IPN_SECRET")
	o.WebhookURL = os.Getenv("WEBHOOK_URL")
	o.JWTSecret = os.Getenv("JWT_SECRET")
	o.AdminLogin = os.Getenv("ADMIN_LOGIN")
	o.AdminHash = os.Getenv("ADMIN_PASSWORD_HASH")
	if err := durationFromEnv("POLL_INTERVAL", &o.PollInterval); err != nil {
		errs = append(errs, err)
	}
	if err := durationFromEnv("SHUTDOWN_TIMEOUT", &o.ShutdownTimeout); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func durationFromEnv(name string, d *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*d = parsed
	return nil
}
