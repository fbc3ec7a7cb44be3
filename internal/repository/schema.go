package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RequiredTables are the tables the engine reads and writes.
var RequiredTables = []string{"users", "questions", "answers", "votes", "flags"}

type SchemaRepository struct {
	db *sqlx.DB
}

func NewSchemaRepository(db *sqlx.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// MissingTables lists the required tables absent from the public schema.
func (r *SchemaRepository) MissingTables(ctx context.Context) ([]string, error) {
	var present []string

	err := r.db.SelectContext(ctx, &present, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = ANY($1)
	`, pq.Array(RequiredTables))
	if err != nil {
		return nil, fmt.Errorf("error checking database schema: %w", err)
	}

	found := make(map[string]struct{}, len(present))
	for _, name := range present {
		found[name] = struct{}{}
	}

	var missing []string
	for _, name := range RequiredTables {
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}

	return missing, nil
}
