// Package sqlschema exposes the schema of a SQLite database as a browsable
// hierarchy. Every level is queried lazily when first expanded.
package sqlschema

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	_ "modernc.org/sqlite"

	"github.com/atomicstack/node-browser/internal/format/table"
	"github.com/atomicstack/node-browser/internal/tree"
)

// Database is the root of a schema hierarchy.
type Database struct {
	path string
	db   *sql.DB
}

// Open opens path read-only. The file must already exist.
func Open(ctx context.Context, path string) (*Database, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Database{path: path, db: db}, nil
}

// readOnlyDSN builds a file: URI for path. Characters such as '#', '%' and
// '?' are escaped so they stay part of the file name.
func readOnlyDSN(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "mode=ro"}
	return u.String()
}

// Close releases the connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) Label() string {
	return filepath.Base(d.path)
}

var groups = []struct {
	kind  string
	title string
}{
	{"table", "Tables"},
	{"view", "Views"},
	{"index", "Indexes"},
	{"trigger", "Triggers"},
}

func (d *Database) Children() ([]tree.Provider, error) {
	out := make([]tree.Provider, 0, len(groups))
	for _, g := range groups {
		out = append(out, &groupNode{db: d.db, kind: g.kind, title: g.title})
	}
	return out, nil
}

func (d *Database) DetailText() (string, error) {
	ctx := context.Background()
	var version string
	var pageSize, pageCount int64
	if err := d.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return "", fmt.Errorf("sqlite version: %w", err)
	}
	if err := d.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return "", fmt.Errorf("page size: %w", err)
	}
	if err := d.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return "", fmt.Errorf("page count: %w", err)
	}
	rows := [][]string{
		{"path", d.path},
		{"sqlite", version},
		{"pages", humanize.Comma(pageCount)},
		{"page size", humanize.IBytes(uint64(pageSize))},
		{"size", humanize.IBytes(uint64(pageSize * pageCount))},
	}
	for _, g := range groups {
		names, err := objectNames(ctx, d.db, g.kind)
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{strings.ToLower(g.title), humanize.Comma(int64(len(names)))})
	}
	return strings.Join(table.Format(rows, nil), "\n"), nil
}

type groupNode struct {
	db    *sql.DB
	kind  string
	title string
}

func (g *groupNode) Label() string {
	return g.title
}

func (g *groupNode) Children() ([]tree.Provider, error) {
	objs, err := schemaObjects(context.Background(), g.db, g.kind, "")
	if err != nil {
		return nil, err
	}
	out := make([]tree.Provider, 0, len(objs))
	for _, o := range objs {
		if g.kind == "table" {
			out = append(out, &tableNode{db: g.db, name: o.name, sql: o.sql})
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (g *groupNode) DetailText() (string, error) {
	names, err := objectNames(context.Background(), g.db, g.kind)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return fmt.Sprintf("no %s", strings.ToLower(g.title)), nil
	}
	return fmt.Sprintf("%s %s\n\n%s", humanize.Comma(int64(len(names))), strings.ToLower(g.title), strings.Join(names, "\n")), nil
}

// objectNode is a leaf schema object carrying its CREATE statement.
type objectNode struct {
	kind string
	name string
	sql  string
}

func (o *objectNode) Label() string {
	return o.name
}

func (o *objectNode) Children() ([]tree.Provider, error) {
	return nil, nil
}

func (o *objectNode) DetailText() (string, error) {
	if o.sql == "" {
		return fmt.Sprintf("%s %s (created automatically)", o.kind, o.name), nil
	}
	return o.sql + ";", nil
}

type tableNode struct {
	db   *sql.DB
	name string
	sql  string
}

func (t *tableNode) Label() string {
	return t.name
}

func (t *tableNode) Children() ([]tree.Provider, error) {
	return []tree.Provider{
		&columnsNode{db: t.db, table: t.name},
		&tableIndexesNode{db: t.db, table: t.name},
		&foreignKeysNode{db: t.db, table: t.name},
	}, nil
}

func (t *tableNode) DetailText() (string, error) {
	ctx := context.Background()
	var count int64
	if err := t.db.QueryRowContext(ctx, "SELECT count(*) FROM "+quoteIdent(t.name)).Scan(&count); err != nil {
		return "", fmt.Errorf("count %s: %w", t.name, err)
	}
	cols, err := tableColumns(ctx, t.db, t.name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s;\n\nrows %s\n\n%s", t.sql, humanize.Comma(count), renderColumns(cols)), nil
}

type column struct {
	name       string
	typ        string
	notNull    bool
	defaultVal sql.NullString
	pk         int
}

func tableColumns(ctx context.Context, db *sql.DB, name string) ([]column, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, name)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()
	var cols []column
	for rows.Next() {
		var c column
		if err := rows.Scan(&c.name, &c.typ, &c.notNull, &c.defaultVal, &c.pk); err != nil {
			return nil, fmt.Errorf("columns of %s: %w", name, err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func renderColumns(cols []column) string {
	rows := make([][]string, 0, len(cols))
	for _, c := range cols {
		rows = append(rows, []string{c.name, c.typ, yesNo(c.notNull), c.defaultVal.String, pkLabel(c.pk)})
	}
	return table.Render([]string{"column", "type", "not null", "default", "pk"}, rows, nil)
}

type columnsNode struct {
	db    *sql.DB
	table string
}

func (c *columnsNode) Label() string {
	return "Columns"
}

func (c *columnsNode) Children() ([]tree.Provider, error) {
	cols, err := tableColumns(context.Background(), c.db, c.table)
	if err != nil {
		return nil, err
	}
	out := make([]tree.Provider, 0, len(cols))
	for _, col := range cols {
		out = append(out, &columnNode{table: c.table, col: col})
	}
	return out, nil
}

func (c *columnsNode) DetailText() (string, error) {
	cols, err := tableColumns(context.Background(), c.db, c.table)
	if err != nil {
		return "", err
	}
	return renderColumns(cols), nil
}

type columnNode struct {
	table string
	col   column
}

func (c *columnNode) Label() string {
	if c.col.typ == "" {
		return c.col.name
	}
	return c.col.name + " " + c.col.typ
}

func (c *columnNode) Children() ([]tree.Provider, error) {
	return nil, nil
}

func (c *columnNode) DetailText() (string, error) {
	def := "none"
	if c.col.defaultVal.Valid {
		def = c.col.defaultVal.String
	}
	rows := [][]string{
		{"table", c.table},
		{"column", c.col.name},
		{"type", c.col.typ},
		{"not null", yesNo(c.col.notNull)},
		{"default", def},
		{"primary key", yesNo(c.col.pk > 0)},
	}
	return strings.Join(table.Format(rows, nil), "\n"), nil
}

type tableIndexesNode struct {
	db    *sql.DB
	table string
}

func (n *tableIndexesNode) Label() string {
	return "Indexes"
}

func (n *tableIndexesNode) Children() ([]tree.Provider, error) {
	objs, err := schemaObjects(context.Background(), n.db, "index", n.table)
	if err != nil {
		return nil, err
	}
	out := make([]tree.Provider, len(objs))
	for i, o := range objs {
		out[i] = o
	}
	return out, nil
}

func (n *tableIndexesNode) DetailText() (string, error) {
	rows, err := n.db.QueryContext(context.Background(), `SELECT name, "unique", origin FROM pragma_index_list(?) ORDER BY name`, n.table)
	if err != nil {
		return "", fmt.Errorf("indexes of %s: %w", n.table, err)
	}
	defer func() { _ = rows.Close() }()
	var out [][]string
	for rows.Next() {
		var name, origin string
		var unique bool
		if err := rows.Scan(&name, &unique, &origin); err != nil {
			return "", fmt.Errorf("indexes of %s: %w", n.table, err)
		}
		out = append(out, []string{name, yesNo(unique), origin})
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "no indexes on " + n.table, nil
	}
	return table.Render([]string{"index", "unique", "origin"}, out, nil), nil
}

type foreignKey struct {
	from, table, to string
	onUpdate        string
	onDelete        string
}

type foreignKeysNode struct {
	db    *sql.DB
	table string
}

func (n *foreignKeysNode) Label() string {
	return "Foreign keys"
}

func (n *foreignKeysNode) keys() ([]foreignKey, error) {
	rows, err := n.db.QueryContext(context.Background(),
		`SELECT "from", "table", coalesce("to", ''), on_update, on_delete FROM pragma_foreign_key_list(?) ORDER BY id, seq`, n.table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", n.table, err)
	}
	defer func() { _ = rows.Close() }()
	var keys []foreignKey
	for rows.Next() {
		var k foreignKey
		if err := rows.Scan(&k.from, &k.table, &k.to, &k.onUpdate, &k.onDelete); err != nil {
			return nil, fmt.Errorf("foreign keys of %s: %w", n.table, err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (n *foreignKeysNode) Children() ([]tree.Provider, error) {
	keys, err := n.keys()
	if err != nil {
		return nil, err
	}
	out := make([]tree.Provider, 0, len(keys))
	for _, k := range keys {
		out = append(out, tree.ProviderFunc{
			Name: fmt.Sprintf("%s → %s(%s)", k.from, k.table, k.to),
			TextFunc: func() (string, error) {
				return fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)\nON UPDATE %s\nON DELETE %s",
					k.from, k.table, k.to, k.onUpdate, k.onDelete), nil
			},
		})
	}
	return out, nil
}

func (n *foreignKeysNode) DetailText() (string, error) {
	keys, err := n.keys()
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "no foreign keys on " + n.table, nil
	}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k.from, k.table + "(" + k.to + ")", k.onDelete})
	}
	return table.Render([]string{"column", "references", "on delete"}, rows, nil), nil
}

func schemaObjects(ctx context.Context, db *sql.DB, kind, tableName string) ([]*objectNode, error) {
	query := `SELECT name, coalesce(sql, '') FROM sqlite_master WHERE type = ? AND name NOT LIKE 'sqlite_%'`
	args := []any{kind}
	if tableName != "" {
		query += ` AND tbl_name = ?`
		args = append(args, tableName)
	}
	rows, err := db.QueryContext(ctx, query+` ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer func() { _ = rows.Close() }()
	var out []*objectNode
	for rows.Next() {
		o := &objectNode{kind: kind}
		if err := rows.Scan(&o.name, &o.sql); err != nil {
			return nil, fmt.Errorf("list %s: %w", kind, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func objectNames(ctx context.Context, db *sql.DB, kind string) ([]string, error) {
	objs, err := schemaObjects(ctx, db, kind, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(objs))
	for i, o := range objs {
		names[i] = o.name
	}
	return names, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func pkLabel(pos int) string {
	if pos == 0 {
		return ""
	}
	return fmt.Sprint(pos)
}

// IsDatabase reports whether path has a SQLite file extension.
func IsDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}
