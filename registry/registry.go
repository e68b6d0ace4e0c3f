// Package registry is the relational store of connection records. It
// speaks postgres or mssql depending on the vault's database profile
// and exposes plain CRUD plus folder-grouped listing; secrets never
// live here, only the metadata needed to reach a host.
package registry

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/szwenni/sshConnectionManager/vault"
)

// Errors callers are expected to branch on.
var (
	ErrNotFound      = errors.New("connection not found")
	ErrUnknownDBType = errors.New("unknown database type")
)

// Registry wraps the database handle. Construct with Open.
type Registry struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects using the stored profile and creates the connections
// table when it does not exist yet.
func Open(profile vault.DBProfile, log *zap.Logger) (*Registry, error) {
	var dialector gorm.Dialector
	switch profile.Type {
	case "postgres":
		dialector = postgres.Open(fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s",
			profile.Server, profile.Username, profile.Password, profile.Database, profile.Port,
		))
	case "mssql":
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(profile.Username, profile.Password),
			Host:     profile.Server,
			RawQuery: url.Values{"database": []string{profile.Database}}.Encode(),
		}
		dialector = sqlserver.Open(u.String())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDBType, profile.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(log), gormlogger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      gormlogger.Warn,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", profile.Type, err)
	}

	if err := db.AutoMigrate(&Connection{}); err != nil {
		return nil, fmt.Errorf("failed to create connections table: %w", err)
	}

	log.Debug("registry opened", zap.String("type", profile.Type), zap.String("server", profile.Server))
	return &Registry{db: db, log: log}, nil
}

// List returns every connection grouped by folder, each group sorted
// by name. Rows with an empty folder group under RootFolder.
func (r *Registry) List() (map[string][]Connection, error) {
	var conns []Connection
	if err := r.db.Find(&conns).Error; err != nil {
		return nil, fmt.Errorf("failed to load connections: %w", err)
	}

	return groupByFolder(conns), nil
}

// Save inserts the record when it has no id yet (the registry assigns
// one) or updates the existing row in place. RDP rows never carry a
// port.
func (r *Registry) Save(c *Connection) error {
	if c.Type == TypeRDP {
		c.Port = nil
	}

	if err := r.db.Save(c).Error; err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}

	r.log.Debug("saved connection", zap.Int64("id", c.ID), zap.String("name", c.Name))
	return nil
}

// Delete removes a row by id. Deleting an id that does not exist is a
// no-op. Callers are expected to also erase the vault's secrets for
// the id; the registry does not cascade.
func (r *Registry) Delete(id int64) error {
	if err := r.db.Delete(&Connection{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	r.log.Debug("deleted connection", zap.Int64("id", id))
	return nil
}

// Get fetches a single connection by id.
func (r *Registry) Get(id int64) (*Connection, error) {
	var c Connection
	err := r.db.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up connection %d: %w", id, err)
	}

	return &c, nil
}

// FindByHost looks a connection up by exact name or ip, for the
// non-interactive connect path.
func (r *Registry) FindByHost(host string) (*Connection, error) {
	var c Connection
	err := r.db.Where("name = ? OR ip = ?", host, host).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", host, err)
	}

	return &c, nil
}

// groupByFolder is the pure half of List, split out for testing.
func groupByFolder(conns []Connection) map[string][]Connection {
	groups := make(map[string][]Connection)
	for _, c := range conns {
		folder := c.FolderName()
		groups[folder] = append(groups[folder], c)
	}

	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
	}

	return groups
}
