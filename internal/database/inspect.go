package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Constraint is one key, foreign key, check or unique index as reported by the database catalog.
type Constraint struct {
	Table      string `json:"table" yaml:"table"`
	Name       string `json:"name" yaml:"name"`
	Definition string `json:"definition" yaml:"definition"`
}

// ListTables returns the application tables in the current database, sorted by name.
func ListTables(ctx context.Context, db *gorm.DB) ([]string, error) {
	var tables []string
	var err error
	switch db.Dialector.Name() {
	case "postgres":
		err = db.WithContext(ctx).Raw("SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name").Scan(&tables).Error
	case "sqlite":
		err = db.WithContext(ctx).Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").Scan(&tables).Error
	default:
		return nil, fmt.Errorf("schema inspection is not supported for %q", db.Dialector.Name())
	}
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// ListConstraints returns every constraint and unique index, sorted by table and name.
func ListConstraints(ctx context.Context, db *gorm.DB) ([]Constraint, error) {
	var (
		constraints []Constraint
		err         error
	)
	switch db.Dialector.Name() {
	case "postgres":
		constraints, err = listPostgresConstraints(ctx, db)
	case "sqlite":
		constraints, err = listSQLiteConstraints(ctx, db)
	default:
		return nil, fmt.Errorf("schema inspection is not supported for %q", db.Dialector.Name())
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(constraints, func(i, j int) bool {
		if constraints[i].Table != constraints[j].Table {
			return constraints[i].Table < constraints[j].Table
		}
		return constraints[i].Name < constraints[j].Name
	})
	return constraints, nil
}

func listPostgresConstraints(ctx context.Context, db *gorm.DB) ([]Constraint, error) {
	var rows []struct {
		Relname string `gorm:"column:relname"`
		Conname string `gorm:"column:conname"`
		Def     string `gorm:"column:def"`
	}
	err := db.WithContext(ctx).Raw(`
SELECT r.relname, c.conname, pg_get_constraintdef(c.oid) AS def
FROM pg_constraint c
JOIN pg_class r ON c.conrelid = r.oid
JOIN pg_namespace n ON n.oid = r.relnamespace
WHERE n.nspname = current_schema()
UNION ALL
SELECT t.relname, i.relname, pg_get_indexdef(ix.indexrelid)
FROM pg_index ix
JOIN pg_class i ON i.oid = ix.indexrelid
JOIN pg_class t ON t.oid = ix.indrelid
JOIN pg_namespace n ON n.oid = t.relnamespace
WHERE n.nspname = current_schema() AND ix.indisunique AND NOT ix.indisprimary
	AND NOT EXISTS (SELECT 1 FROM pg_constraint c WHERE c.conindid = ix.indexrelid)`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list constraints: %w", err)
	}

	constraints := make([]Constraint, 0, len(rows))
	for _, r := range rows {
		constraints = append(constraints, Constraint{Table: r.Relname, Name: r.Conname, Definition: r.Def})
	}
	return constraints, nil
}

func listSQLiteConstraints(ctx context.Context, db *gorm.DB) ([]Constraint, error) {
	var fks []struct {
		Tbl      string `gorm:"column:tbl"`
		ID       int    `gorm:"column:id"`
		Parent   string `gorm:"column:parent"`
		From     string `gorm:"column:from_col"`
		To       string `gorm:"column:to_col"`
		OnDelete string `gorm:"column:on_delete"`
	}
	err := db.WithContext(ctx).Raw(`
SELECT m.name AS tbl, p.id AS id, p."table" AS parent, p."from" AS from_col, p."to" AS to_col, p.on_delete AS on_delete
FROM sqlite_master m JOIN pragma_foreign_key_list(m.name) p
WHERE m.type = 'table'
ORDER BY m.name, p.id, p.seq`).Scan(&fks).Error
	if err != nil {
		return nil, fmt.Errorf("list foreign keys: %w", err)
	}

	type foreignKey struct {
		table, parent, onDelete string
		from, to                []string
	}
	var order []*foreignKey
	byID := map[string]*foreignKey{}
	for _, fk := range fks {
		key := fmt.Sprintf("%s/%d", fk.Tbl, fk.ID)
		g, ok := byID[key]
		if !ok {
			g = &foreignKey{table: fk.Tbl, parent: fk.Parent, onDelete: fk.OnDelete}
			byID[key] = g
			order = append(order, g)
		}
		g.from = append(g.from, fk.From)
		g.to = append(g.to, fk.To)
	}

	constraints := make([]Constraint, 0, len(order))
	for _, g := range order {
		constraints = append(constraints, Constraint{
			Table: g.table,
			Name:  fmt.Sprintf("fk_%s_%s", g.table, strings.Join(g.from, "_")),
			Definition: fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s",
				strings.Join(g.from, ", "), g.parent, strings.Join(g.to, ", "), g.onDelete),
		})
	}

	var indexes []struct {
		Tbl    string `gorm:"column:tbl"`
		Name   string `gorm:"column:idx"`
		Origin string `gorm:"column:origin"`
		Cols   string `gorm:"column:cols"`
	}
	err = db.WithContext(ctx).Raw(`
SELECT m.name AS tbl, il.name AS idx, il.origin AS origin, group_concat(ii.name, ', ') AS cols
FROM sqlite_master m
JOIN pragma_index_list(m.name) il
JOIN pragma_index_info(il.name) ii
WHERE m.type = 'table' AND il."unique" = 1
GROUP BY m.name, il.name, il.origin`).Scan(&indexes).Error
	if err != nil {
		return nil, fmt.Errorf("list unique indexes: %w", err)
	}
	for _, idx := range indexes {
		kind := "UNIQUE"
		if idx.Origin == "pk" {
			kind = "PRIMARY KEY"
		}
		constraints = append(constraints, Constraint{Table: idx.Tbl, Name: idx.Name, Definition: fmt.Sprintf("%s (%s)", kind, idx.Cols)})
	}

	var checks []struct {
		Name string `gorm:"column:name"`
		SQL  string `gorm:"column:sql"`
	}
	if err := db.WithContext(ctx).Raw("SELECT name, sql FROM sqlite_master WHERE type = 'table' AND sql LIKE '%CHECK%'").Scan(&checks).Error; err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	for _, chk := range checks {
		for _, c := range parseSQLiteChecks(chk.SQL) {
			c.Table = chk.Name
			constraints = append(constraints, c)
		}
	}

	return constraints, nil
}

// parseSQLiteChecks extracts `CONSTRAINT name CHECK (expr)` clauses from a CREATE TABLE statement.
func parseSQLiteChecks(createSQL string) []Constraint {
	var out []Constraint
	rest := createSQL
	for {
		i := strings.Index(strings.ToUpper(rest), "CONSTRAINT ")
		if i < 0 {
			return out
		}
		rest = rest[i+len("CONSTRAINT "):]
		fields := strings.Fields(rest)
		if len(fields) < 2 || !strings.HasPrefix(strings.ToUpper(fields[1]), "CHECK") {
			continue
		}
		name := strings.Trim(fields[0], "`\"")
		open := strings.Index(rest, "(")
		if open < 0 {
			return out
		}
		depth := 0
		for j := open; j < len(rest); j++ {
			switch rest[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					out = append(out, Constraint{Name: name, Definition: "CHECK " + rest[open:j+1]})
					rest = rest[j+1:]
					j = len(rest)
				}
			}
		}
		if depth != 0 {
			return out
		}
	}
}
