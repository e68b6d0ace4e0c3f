package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Legacy single-purpose files from before the unified document. Each
// holds one top-level section's worth of JSON.
const (
	legacyDBConfigFile     = "db_config.json"
	legacyKeyLocationsFile = "key_locations.json"
	legacyPasswordsFile    = "passwords.json"
)

// migrate folds the legacy files into the unified document. Each file
// that exists and parses replaces its section; a file with bad content
// is skipped without blocking the others. When anything migrated, the
// document is saved once and each migrated file is renamed with a .bak
// suffix so the step is visibly reversible. Renamed files are simply
// absent on the next run, which makes re-running a no-op.
func (v *Vault) migrate() (bool, error) {
	var migrated []string

	if ok := loadLegacy(filepath.Join(v.dir, legacyDBConfigFile), &v.doc.DB); ok {
		migrated = append(migrated, legacyDBConfigFile)
	}
	if ok := loadLegacy(filepath.Join(v.dir, legacyKeyLocationsFile), &v.doc.KeyPaths); ok {
		migrated = append(migrated, legacyKeyLocationsFile)
	}
	if ok := loadLegacy(filepath.Join(v.dir, legacyPasswordsFile), &v.doc.Passwords); ok {
		migrated = append(migrated, legacyPasswordsFile)
	}

	if len(migrated) == 0 {
		return false, nil
	}

	v.doc.ensureMaps()
	if err := v.save(); err != nil {
		return false, err
	}

	for _, name := range migrated {
		old := filepath.Join(v.dir, name)
		if err := os.Rename(old, old+".bak"); err != nil {
			return true, fmt.Errorf("failed to back up %s: %w", name, err)
		}
	}

	return true, nil
}

// loadLegacy reads one legacy file into dst and reports whether it was
// present and valid. Parse failures are deliberately silent.
func loadLegacy(path string, dst interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	return json.Unmarshal(data, dst) == nil
}
