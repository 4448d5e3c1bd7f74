package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/colonyops/taskgraph/internal/core/config"
	"github.com/colonyops/taskgraph/internal/core/kv"
	"github.com/colonyops/taskgraph/internal/data/db"
)

// StorageCheck verifies the storage backend answers and, for SQLite, that the
// database file passes a quick integrity check and is fully migrated.
type StorageCheck struct {
	backend config.Backend
	store   kv.KV
	db      *db.DB
}

// NewStorageCheck creates a new storage check. database may be nil.
func NewStorageCheck(backend config.Backend, store kv.KV, database *db.DB) *StorageCheck {
	return &StorageCheck{backend: backend, store: store, db: database}
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	result.Items = append(result.Items, CheckItem{Label: "backend", Status: StatusPass, Detail: string(c.backend)})

	keys, err := c.store.ListKeys(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: "read", Status: StatusFail, Detail: err.Error()})
	} else {
		result.Items = append(result.Items, CheckItem{Label: "read", Status: StatusPass, Detail: fmt.Sprintf("%d keys", len(keys))})
	}

	if c.db == nil {
		return result
	}

	var status string
	if err := c.db.Conn().QueryRowContext(ctx, "PRAGMA quick_check").Scan(&status); err != nil {
		result.Items = append(result.Items, CheckItem{Label: "integrity", Status: StatusFail, Detail: err.Error()})
	} else if status != "ok" {
		result.Items = append(result.Items, CheckItem{Label: "integrity", Status: StatusFail, Detail: status})
	} else {
		result.Items = append(result.Items, CheckItem{Label: "integrity", Status: StatusPass, Detail: "quick_check ok"})
	}

	switch schema, err := c.db.SchemaStatus(ctx); {
	case err != nil:
		result.Items = append(result.Items, CheckItem{Label: "schema", Status: StatusFail, Detail: err.Error()})
	case len(schema.Pending) > 0:
		result.Items = append(result.Items, CheckItem{
			Label:  "schema",
			Status: StatusWarn,
			Detail: fmt.Sprintf("version %d of %d, pending %s", schema.Current, schema.Latest, strings.Join(schema.Pending, ", ")),
		})
	default:
		result.Items = append(result.Items, CheckItem{Label: "schema", Status: StatusPass, Detail: fmt.Sprintf("version %d", schema.Current)})
	}

	return result
}
