package evaluator

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"tally/internal/object"
)

var (
	dbConnections = map[int64]*sql.DB{}
	nextDbHandle  int64
)

// dbModule exposes relational storage to programs. The driver is picked
// from the connection spec: "mysql:<dsn>", "postgres://..." URLs, anything
// else is treated as an sqlite3 path.
func (i *Interpreter) dbModule() *object.Native {
	tbl := object.NewTable()

	tbl.Set("open", nativeFn("Db:open", func(arg object.Object, _ *object.Environment) object.Object {
		spec, ok := arg.(*object.String)
		if !ok {
			return object.NewTypeError("string", arg)
		}
		driver, dsn := splitConnectionSpec(spec.Value)
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return object.NewNotInDomain(spec, "failed to open connection: "+err.Error())
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return object.NewNotInDomain(spec, "failed to ping database: "+err.Error())
		}
		nextDbHandle++
		id := nextDbHandle
		dbConnections[id] = db
		slog.Debug("database opened",
			slog.String("driver", driver),
			slog.Int64("handle", id))
		return &object.Unit{Magnitude: decimal.NewFromInt(id)}
	}))

	tbl.Set("query", native2("Db:query", func(a, b object.Object, _ *object.Environment) object.Object {
		db, errObj := connectionFor(a)
		if errObj != nil {
			return errObj
		}
		query, ok := b.(*object.String)
		if !ok {
			return object.NewTypeError("string", b)
		}
		rows, err := db.Query(query.Value)
		if err != nil {
			return object.NewNotInDomain(query, "query failed: "+err.Error())
		}
		defer rows.Close()
		return renderRows(rows)
	}))

	tbl.Set("exec", native2("Db:exec", func(a, b object.Object, _ *object.Environment) object.Object {
		db, errObj := connectionFor(a)
		if errObj != nil {
			return errObj
		}
		stmt, ok := b.(*object.String)
		if !ok {
			return object.NewTypeError("string", b)
		}
		result, err := db.Exec(stmt.Value)
		if err != nil {
			return object.NewNotInDomain(stmt, "exec failed: "+err.Error())
		}
		affected, _ := result.RowsAffected()
		lastID, _ := result.LastInsertId()
		out := object.NewTable()
		out.Set("rows_affected", &object.Unit{Magnitude: decimal.NewFromInt(affected)})
		out.Set("last_insert_id", &object.Unit{Magnitude: decimal.NewFromInt(lastID)})
		return out
	}))

	tbl.Set("close", nativeFn("Db:close", func(arg object.Object, _ *object.Environment) object.Object {
		u, ok := arg.(*object.Unit)
		if !ok {
			return object.NewTypeError("unit", arg)
		}
		id := u.Magnitude.IntPart()
		db, ok := dbConnections[id]
		if !ok {
			return object.FALSE
		}
		delete(dbConnections, id)
		db.Close()
		return object.TRUE
	}))

	return moduleNative("Db", tbl)
}

func splitConnectionSpec(spec string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(spec, "mysql:"):
		return "mysql", strings.TrimPrefix(spec, "mysql:")
	case strings.HasPrefix(spec, "postgres:"):
		// lib/pq accepts the full postgres:// URL as its DSN.
		return "postgres", spec
	}
	return "sqlite3", spec
}

func connectionFor(arg object.Object) (*sql.DB, object.Object) {
	u, ok := arg.(*object.Unit)
	if !ok {
		return nil, object.NewTypeError("unit", arg)
	}
	db, ok := dbConnections[u.Magnitude.IntPart()]
	if !ok {
		return nil, object.NewNotInDomain(u, "invalid connection handle")
	}
	return db, nil
}

// renderRows converts a result set into a table of row tables keyed by
// the row index.
func renderRows(rows *sql.Rows) object.Object {
	columns, err := rows.Columns()
	if err != nil {
		return object.NewNotInDomain(object.NewTable(), "reading columns: "+err.Error())
	}

	out := object.NewTable()
	idx := 0
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return object.NewNotInDomain(out, "scanning row: "+err.Error())
		}
		rowTbl := object.NewTable()
		for i, col := range columns {
			rowTbl.Set(col, sqlValue(values[i]))
		}
		out.Set(strconv.Itoa(idx), rowTbl)
		idx++
	}
	if err := rows.Err(); err != nil {
		return object.NewNotInDomain(out, "iterating rows: "+err.Error())
	}
	return out
}

func sqlValue(v any) object.Object {
	switch v := v.(type) {
	case nil:
		return &object.Symbol{Value: "null"}
	case int64:
		return &object.Unit{Magnitude: decimal.NewFromInt(v)}
	case float64:
		return &object.Unit{Magnitude: decimal.NewFromFloat(v)}
	case bool:
		return object.NativeBoolToBooleanObject(v)
	case []byte:
		return &object.String{Value: string(v)}
	case string:
		return &object.String{Value: v}
	case time.Time:
		return &object.String{Value: v.Format(time.RFC3339)}
	}
	return &object.String{Value: fmt.Sprint(v)}
}
