package store

// Config holds configuration for the Store.
type Config struct {
	// ItemsTable is the name of the items table.
	// Default: "shelf_items"
	ItemsTable string

	// CountersTable is the name of the per-type id counter table.
	// Default: "shelf_counters"
	CountersTable string

	// TypeIndex is the name of the GSI keyed by item type (hash) and
	// owner key (range), used for per-type listings.
	// Default: "type-index"
	TypeIndex string
}

// DefaultConfig returns the default table and index names.
func DefaultConfig() Config {
	return Config{
		ItemsTable:    "shelf_items",
		CountersTable: "shelf_counters",
		TypeIndex:     "type-index",
	}
}

// validate fills in defaults for unset values.
func (c *Config) validate() {
	if c.ItemsTable == "" {
		c.ItemsTable = "shelf_items"
	}
	if c.CountersTable == "" {
		c.CountersTable = "shelf_counters"
	}
	if c.TypeIndex == "" {
		c.TypeIndex = "type-index"
	}
}
