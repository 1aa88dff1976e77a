package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/campushire/portal/pkg/storage"
)

// Config holds the seeder configuration
type Config struct {
	StorageType string
	SQLitePath  string
	PostgresURL string
	LogLevel    string
}

// Seeder loads the demo dataset into a freshly provisioned record store so the
// portal has profiles, companies, and student records to show on first login.
func main() {
	config := parseFlags()
	logger := setupLogger(config.LogLevel)
	logger.Info("Seeding campus recruitment portal data")

	store, err := openStore(config)
	if err != nil {
		logger.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	inserted, skipped := 0, 0
	for _, s := range seedRows() {
		existing, err := store.Select(ctx, s.table, storage.Filter{"id": s.row["id"]})
		if err != nil {
			logger.Fatalf("Failed to check %s/%v: %v", s.table, s.row["id"], err)
		}
		if len(existing) > 0 {
			logger.Debugf("Skipping existing %s row %v", s.table, s.row["id"])
			skipped++
			continue
		}
		if _, err := store.Insert(ctx, s.table, s.row); err != nil {
			logger.Fatalf("Failed to insert into %s: %v", s.table, err)
		}
		logger.Infof("Seeded %s row %v", s.table, s.row["id"])
		inserted++
	}

	logger.Infof("Done: %d rows inserted, %d already present", inserted, skipped)
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.StorageType, "storage", "sqlite", "Storage backend: sqlite or postgres")
	flag.StringVar(&config.SQLitePath, "sqlite-path", "portal.db", "SQLite database file")
	flag.StringVar(&config.PostgresURL, "postgres-url", os.Getenv("PORTAL_POSTGRES_URL"), "PostgreSQL connection string")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	return config
}

func setupLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func openStore(config *Config) (storage.RecordStore, error) {
	switch config.StorageType {
	case "sqlite":
		return storage.NewSQLiteStore(config.SQLitePath)
	case "postgres":
		if config.PostgresURL == "" {
			return nil, fmt.Errorf("postgres-url is required for postgres storage")
		}
		return storage.NewPostgresStore(config.PostgresURL, 5, 1)
	default:
		return nil, fmt.Errorf("unknown storage type %q", config.StorageType)
	}
}

type seedRow struct {
	table storage.Table
	row   storage.Row
}

// seedRows returns the demo dataset. Profile ids 1 to 3 line up with the
// fixed demo accounts so their roles resolve after login.
func seedRows() []seedRow {
	return []seedRow{
		{storage.TableProfiles, storage.Row{
			"id": "1", "email": "admin@example.com", "name": "Admin User", "role": "admin",
		}},
		{storage.TableProfiles, storage.Row{
			"id": "2", "email": "staff@example.com", "name": "Staff Member", "role": "staff",
		}},
		{storage.TableProfiles, storage.Row{
			"id": "3", "email": "student@example.com", "name": "Student User", "role": "student",
		}},

		{storage.TableStudents, storage.Row{
			"id": "1", "user_id": "3", "name": "Student User", "email": "student@example.com",
			"course": "Computer Science", "year": 3,
			"resume_url": "", "resume_status": "pending", "resume_notes": "",
		}},
		{storage.TableStudents, storage.Row{
			"id": "2", "user_id": "4", "name": "Jane Smith", "email": "jane@example.com",
			"course": "Business Administration", "year": 4,
			"resume_url": "", "resume_status": "approved",
			"resume_notes": "Great resume, approved for applications.",
		}},
		{storage.TableStudents, storage.Row{
			"id": "3", "user_id": "5", "name": "John Doe", "email": "john@example.com",
			"course": "Mechanical Engineering", "year": 2,
			"resume_url": "", "resume_status": "rejected",
			"resume_notes": "Please add more details about your project experience.",
		}},

		{storage.TableCompanies, storage.Row{
			"id":           "1",
			"name":         "Tech Innovations Inc.",
			"description":  "Leading technology company focused on AI solutions.",
			"positions":    []string{"Software Engineer", "Data Scientist", "UX Designer"},
			"deadline":     "2025-06-15",
			"requirements": []string{"Strong programming skills", "Problem-solving abilities", "Team player"},
			"location":     "San Francisco, CA",
			"posted_by":    "1",
		}},
		{storage.TableCompanies, storage.Row{
			"id":           "2",
			"name":         "Global Finance Group",
			"description":  "International financial services provider.",
			"positions":    []string{"Financial Analyst", "Risk Management Specialist", "Business Consultant"},
			"deadline":     "2025-05-30",
			"requirements": []string{"Finance or related degree", "Analytical skills", "Excel proficiency"},
			"location":     "New York, NY",
			"posted_by":    "2",
		}},
		{storage.TableCompanies, storage.Row{
			"id":           "3",
			"name":         "Eco Solutions",
			"description":  "Sustainable engineering and environmental consulting firm.",
			"positions":    []string{"Environmental Engineer", "Sustainability Consultant", "Project Manager"},
			"deadline":     "2025-07-01",
			"requirements": []string{"Engineering background", "Environmental knowledge", "Project management skills"},
			"location":     "Seattle, WA",
			"posted_by":    "1",
		}},
	}
}
