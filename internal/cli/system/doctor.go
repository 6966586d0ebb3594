package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/soulsync/internal/backup"
	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/keyring"
	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/migration"
	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/records"
	"github.com/julianstephens/soulsync/internal/storage"
	"github.com/julianstephens/soulsync/internal/storage/postgres"
	"github.com/julianstephens/soulsync/internal/storage/sqlite"
	"github.com/julianstephens/soulsync/migrations"
)

// listProcesses can be stubbed in tests.
var listProcesses = ps.Processes

// warning marks a check that found something worth mentioning but not failing on.
type warning struct{ msg string }

func (w *warning) Error() string { return w.msg }

func warnf(format string, args ...interface{}) error {
	return &warning{msg: fmt.Sprintf(format, args...)}
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, err error) {
		var w *warning
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", name)
		case errors.As(err, &w):
			ctx.Printf("⚠ %s: WARNING\n", name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}
	skip := func(name, reason string) {
		ctx.Printf("⊘ %s: SKIPPED (%s)\n", name, reason)
	}

	// Check 1: store readable
	store, loadErr := ctx.Store.Load()
	if loadErr == nil {
		loadErr = storage.LastLoadError(ctx.Store)
	}
	report("Store readable", loadErr)

	// Check 2: schema version, SQL stores only
	switch {
	case loadErr != nil:
		skip("Schema version", "store not readable")
	default:
		if applies, err := checkSchemaVersion(ctx); applies {
			report("Schema version", err)
		} else {
			skip("Schema version", "JSON store has no schema")
		}
	}

	// Check 3: backups present (warning only)
	report("Backups present", checkBackupsPresent(ctx))

	// Check 4-6: record contents
	if loadErr != nil {
		skip("Goal integrity", "store not readable")
		skip("Entry timestamps", "store not readable")
		skip("Stored credentials", "store not readable")
	} else {
		report("Goal integrity", checkGoalIntegrity(store))
		report("Entry timestamps", checkEntryTimestamps(store))
		report("Stored credentials", checkCredentials(store))
	}

	// Check 7: assistant credentials (warning only)
	report("AI API key", checkAPIKey())

	// Check 8: keyring (warning only, sessions need it)
	if keyring.IsAvailable() {
		report("OS keyring", nil)
	} else {
		report("OS keyring", warnf("keyring unavailable; 'soulsync login' cannot remember sessions"))
	}

	// Check 9: other soulsync processes writing the same store (warning only)
	report("Concurrent processes", checkConcurrentProcesses())

	// Check 10: log file
	report("Log file", checkLogFile())

	// Check 11: clock/timezone sanity
	report("Clock/timezone", checkClockTimezone(ctx.Today()))

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("diagnostics failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

type schemaVersioner interface {
	SchemaVersion() (int, error)
}

// checkSchemaVersion compares the applied migration with the newest embedded
// one. applies is false for stores without a schema.
func checkSchemaVersion(ctx *cli.Context) (applies bool, err error) {
	var dir string
	var driver migration.Driver
	switch ctx.Store.(type) {
	case *sqlite.Store:
		dir, driver = "sqlite", migration.DriverSQLite
	case *postgres.Store:
		dir, driver = "postgres", migration.DriverPostgres
	default:
		return false, nil
	}
	sv := ctx.Store.(schemaVersioner)

	current, err := sv.SchemaVersion()
	if err != nil {
		return true, fmt.Errorf("failed to read schema version: %w", err)
	}
	latest, err := latestSchemaVersion(dir, driver)
	if err != nil {
		return true, err
	}
	switch {
	case current > latest:
		return true, fmt.Errorf("database schema version (%d) is newer than supported (%d). Please upgrade soulsync", current, latest)
	case current < latest:
		return true, fmt.Errorf("database schema version (%d) is behind (%d); run any command against the store to migrate it", current, latest)
	}
	return true, nil
}

func latestSchemaVersion(dir string, driver migration.Driver) (int, error) {
	subFS, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return 0, fmt.Errorf("failed to access %s migrations: %w", dir, err)
	}
	return migration.NewRunner(nil, subFS, driver).GetLatestVersion()
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := backup.NewManager(ctx.Store.GetConfigPath())
	if err != nil {
		if errors.Is(err, backup.ErrUnsupportedStore) {
			return warnf("backups are not managed for this store type; use the database's own tooling")
		}
		return err
	}
	list, err := mgr.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return warnf("no backups found in %s. Run 'soulsync backup' to create one", mgr.BackupDir())
	}
	age := ctx.Today().Sub(list[0].Timestamp)
	if age > 7*24*time.Hour {
		return warnf("most recent backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func sortedUsers(store models.UserStore) []string {
	names := make([]string, 0, len(store))
	for name := range store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkGoalIntegrity fails on duplicate IDs, which make edits ambiguous, and
// warns about goals that would be rejected by the edit form.
func checkGoalIntegrity(store models.UserStore) error {
	var problems, warnings []string
	for _, name := range sortedUsers(store) {
		rec, _ := store.Record(name)
		if rec.Unreadable() {
			warnings = append(warnings, fmt.Sprintf("%s: record could not be decoded and is left as stored", name))
			continue
		}
		seen := make(map[string]int)
		for i, g := range rec.Goals {
			if g.Unreadable() {
				warnings = append(warnings, fmt.Sprintf("%s: goal #%d could not be decoded and is left as stored", name, i+1))
				continue
			}
			if prev, dup := seen[g.ID]; dup {
				problems = append(problems, fmt.Sprintf("%s: goals #%d and #%d share id %q", name, prev+1, i+1, g.ID))
			}
			seen[g.ID] = i
			if err := g.Validate(); err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: goal #%d (%q) has invalid fields", name, i+1, g.Title))
			}
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	if len(warnings) > 0 {
		return warnf("%s", strings.Join(warnings, "; "))
	}
	return nil
}

func checkEntryTimestamps(store models.UserStore) error {
	var skipped []string
	for _, name := range sortedUsers(store) {
		rec, _ := store.Record(name)
		for _, s := range records.ResolveMoods(rec.Moods).Skipped {
			skipped = append(skipped, fmt.Sprintf("%s: %v", name, s))
		}
		for _, s := range records.ResolveJournals(rec.Journals).Skipped {
			skipped = append(skipped, fmt.Sprintf("%s: %v", name, s))
		}
	}
	if len(skipped) > 0 {
		return warnf("%d entr(ies) hidden from history views: %s", len(skipped), strings.Join(skipped, "; "))
	}
	return nil
}

func checkCredentials(store models.UserStore) error {
	var legacy []string
	for _, name := range sortedUsers(store) {
		rec := store[name]
		if rec.Password != "" && !rec.HasHashedPassword() {
			legacy = append(legacy, name)
		}
	}
	if len(legacy) > 0 {
		return warnf("plaintext passwords stored for: %s (upgraded on next login)", strings.Join(legacy, ", "))
	}
	return nil
}

func checkAPIKey() error {
	_, source := keyring.ResolveAPIKey(os.Getenv)
	if source == "none" {
		return warnf("no API key in %s or the keyring; chat and reflections are disabled", constants.APIKeyEnv)
	}
	return nil
}

func checkConcurrentProcesses() error {
	procs, err := listProcesses()
	if err != nil {
		return warnf("could not list processes: %v", err)
	}
	self := os.Getpid()
	var pids []string
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if strings.TrimSuffix(p.Executable(), ".exe") == constants.AppName {
			pids = append(pids, fmt.Sprint(p.Pid()))
		}
	}
	if len(pids) > 0 {
		return warnf("other soulsync processes running (pid %s); concurrent writes to a JSON store are last-writer-wins", strings.Join(pids, ", "))
	}
	return nil
}

func checkLogFile() error {
	if logger.LogFile == "" {
		return warnf("logging not initialized")
	}
	dir := filepath.Dir(logger.LogFile)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("log directory missing: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func checkClockTimezone(now time.Time) error {
	if now.Location() == nil {
		return errors.New("timezone location is nil")
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system clock appears to be wrong (year %d)", now.Year())
	}
	name, _ := now.Zone()
	if name == "" {
		return warnf("timezone abbreviation is empty")
	}
	return nil
}
