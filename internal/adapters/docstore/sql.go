package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"chitfund/internal/adapters/storage"
)

// Compile-time check that *SQLClient satisfies Client.
var _ Client = (*SQLClient)(nil)

// Dialect captures the SQL differences between the supported drivers.
type Dialect struct {
	driver string
}

var (
	SQLiteDialect   = Dialect{driver: storage.DriverSQLite}
	PostgresDialect = Dialect{driver: storage.DriverPostgres}
)

// Driver returns the database/sql driver name.
func (d Dialect) Driver() string { return d.driver }

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d.driver == storage.DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// JSONParam returns the n-th bind parameter typed as a JSON document.
func (d Dialect) JSONParam(n int) string {
	if d.driver == storage.DriverPostgres {
		return d.Placeholder(n) + "::jsonb"
	}
	return d.Placeholder(n)
}

// FieldExpr returns an expression reading a top-level JSON field.
// PRE: field passed ValidateField
func (d Dialect) FieldExpr(field string) string {
	if d.driver == storage.DriverPostgres {
		return "(data->'" + field + "')"
	}
	return "json_extract(data, '$." + field + "')"
}

// FieldPresent returns a condition true when the field holds a non-null value.
func (d Dialect) FieldPresent(field string) string {
	if d.driver == storage.DriverPostgres {
		return "COALESCE(jsonb_typeof(data->'" + field + "'), 'null') <> 'null'"
	}
	return d.FieldExpr(field) + " IS NOT NULL"
}

// ForUpdate returns the row lock suffix for read-modify-write.
func (d Dialect) ForUpdate() string {
	if d.driver == storage.DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// SQLClient stores documents in the documents table created by
// storage.MigrateDB.
type SQLClient struct {
	db      storage.SQLDB
	dialect Dialect
	now     func() time.Time
	newID   func() string
}

// NewSQLClient wraps a migrated database.
// PRE: db has been migrated with storage.MigrateDB for dialect's driver
func NewSQLClient(db storage.SQLDB, dialect Dialect) *SQLClient {
	return &SQLClient{
		db:      db,
		dialect: dialect,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func decodeFields(raw []byte) (Fields, error) {
	out := Fields{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

func encodeFields(f Fields) (string, error) {
	if f == nil {
		f = Fields{}
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

// List returns a collection's documents ordered in SQL.
func (c *SQLClient) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	var b strings.Builder
	b.WriteString("SELECT id, data FROM documents WHERE collection = ")
	b.WriteString(c.dialect.Placeholder(1))
	if q.OrderBy == "" {
		b.WriteString(" ORDER BY created_at, id")
	} else {
		if err := ValidateField(q.OrderBy); err != nil {
			return nil, err
		}
		expr := c.dialect.FieldExpr(q.OrderBy)
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " AND %s ORDER BY %s %s, id", c.dialect.FieldPresent(q.OrderBy), expr, dir)
	}

	rows, err := c.db.QueryContext(ctx, b.String(), collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

// Get returns a single document or ErrNotFound.
func (c *SQLClient) Get(ctx context.Context, collection, id string) (Document, error) {
	query := fmt.Sprintf("SELECT data FROM documents WHERE collection = %s AND id = %s",
		c.dialect.Placeholder(1), c.dialect.Placeholder(2))
	var raw []byte
	err := c.db.QueryRowContext(ctx, query, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields}, nil
}

// Add inserts a document under a new random id.
func (c *SQLClient) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := validateCollection(collection); err != nil {
		return "", err
	}
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	id := c.newID()
	now := formatTimestamp(c.now())
	query := fmt.Sprintf("INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES (%s, %s, %s, %s, %s)",
		c.dialect.Placeholder(1), c.dialect.Placeholder(2), c.dialect.JSONParam(3),
		c.dialect.Placeholder(4), c.dialect.Placeholder(5))
	if _, err := c.db.ExecContext(ctx, query, collection, id, data, now, now); err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	return id, nil
}

// Set upserts a document with a caller-chosen id.
func (c *SQLClient) Set(ctx context.Context, collection, id string, fields Fields) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := validateCollection(collection); err != nil {
		return err
	}
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}
	now := formatTimestamp(c.now())
	query := fmt.Sprintf(`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES (%s, %s, %s, %s, %s)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		c.dialect.Placeholder(1), c.dialect.Placeholder(2), c.dialect.JSONParam(3),
		c.dialect.Placeholder(4), c.dialect.Placeholder(5))
	if _, err := c.db.ExecContext(ctx, query, collection, id, data, now, now); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges fields into the stored document inside a transaction.
func (c *SQLClient) Update(ctx context.Context, collection, id string, fields Fields) (err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update %s/%s: %w", collection, id, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	selectQuery := fmt.Sprintf("SELECT data FROM documents WHERE collection = %s AND id = %s%s",
		c.dialect.Placeholder(1), c.dialect.Placeholder(2), c.dialect.ForUpdate())
	var raw []byte
	if err = tx.QueryRowContext(ctx, selectQuery, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	current, err := decodeFields(raw)
	if err != nil {
		return err
	}
	data, err := encodeFields(merge(current, fields))
	if err != nil {
		return err
	}

	updateQuery := fmt.Sprintf("UPDATE documents SET data = %s, updated_at = %s WHERE collection = %s AND id = %s",
		c.dialect.JSONParam(1), c.dialect.Placeholder(2), c.dialect.Placeholder(3), c.dialect.Placeholder(4))
	if _, err = tx.ExecContext(ctx, updateQuery, data, formatTimestamp(c.now()), collection, id); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document, reporting ErrNotFound when nothing matched.
func (c *SQLClient) Delete(ctx context.Context, collection, id string) error {
	query := fmt.Sprintf("DELETE FROM documents WHERE collection = %s AND id = %s",
		c.dialect.Placeholder(1), c.dialect.Placeholder(2))
	res, err := c.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
