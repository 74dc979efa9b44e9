// Package db wires github.com/jackc/pgx/v5 into the native function ABI,
// giving scripts a connect/query/close surface over Postgres. Grounded on
// the teacher's modules/sql package for the overall shape (open a
// connection handle, run a query, marshal rows back into script values,
// close on release) but narrowed to a single driver: the teacher vendors
// four drivers behind database/sql's generic interface, while this
// module's go.mod only carries pgx, so it talks to pgx's own Conn/Rows
// API directly rather than through database/sql.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
)

// ConnTypeID is this module's reserved heap TypeID for connection
// handles (see DESIGN.md's module TypeID registry).
const ConnTypeID uint32 = 6

// Register defines "db_connect", "db_query", and "db_close" in funcs.
func Register(funcs *symbols.FuncTable) {
	funcs.Define("db_connect", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: connect,
	})
	funcs.Define("db_query", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: query,
	})
	funcs.Define("db_close", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: closeConn,
	})
}

func connect(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 1 {
		host.Panic("db_connect requires a connection-string argument")
		return value.None
	}
	dsn := string(host.ValueAsString(args[0]))
	conn, err := pgx.Connect(context.Background(), dsn)
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return host.NewHandle(ConnTypeID, conn, func(native any) {
		conn := native.(*pgx.Conn)
		_ = conn.Close(context.Background())
	})
}

func closeConn(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 1 {
		host.Panic("db_close requires a connection argument")
		return value.None
	}
	if conn, ok := host.HandleNative(args[0], ConnTypeID); ok {
		_ = conn.(*pgx.Conn).Close(context.Background())
	}
	return value.None
}

// query runs a SQL statement and returns a list of row maps, column name
// to cell value. Cells are converted with the same handful of scalar
// kinds a script's value model supports; anything else is stringified.
func query(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 2 {
		host.Panic("db_query requires a connection and a SQL string argument")
		return value.None
	}
	native, ok := host.HandleNative(args[0], ConnTypeID)
	if !ok {
		host.Panic("db_query: first argument is not a connection handle")
		return value.None
	}
	conn := native.(*pgx.Conn)
	sql := string(host.ValueAsString(args[1]))

	params := make([]any, 0, len(args)-2)
	for _, a := range args[2:] {
		params = append(params, cellToGo(host, a))
	}

	rows, err := conn.Query(context.Background(), sql, params...)
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var results []value.Value
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			host.Panic(err.Error())
			return value.None
		}
		keys := make([]value.Value, len(fields))
		cells := make([]value.Value, len(fields))
		for i, f := range fields {
			keys[i] = host.AllocString(string(f.Name))
			cells[i] = goToCell(host, vals[i])
		}
		results = append(results, host.NewMap(keys, cells))
	}
	if err := rows.Err(); err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return host.NewList(results)
}

func cellToGo(host symbols.NativeHost, v value.Value) any {
	if v.IsNumber() {
		return v.AsFloat()
	}
	if v.IsNone() {
		return nil
	}
	if v == value.True {
		return true
	}
	if v == value.False {
		return false
	}
	return string(host.ValueAsString(v))
}

func goToCell(host symbols.NativeHost, x any) value.Value {
	switch t := x.(type) {
	case nil:
		return value.None
	case bool:
		return value.InitBool(t)
	case int32:
		return value.InitFloat(float64(t))
	case int64:
		return value.InitFloat(float64(t))
	case float32:
		return value.InitFloat(float64(t))
	case float64:
		return value.InitFloat(t)
	case string:
		return host.AllocString(t)
	case []byte:
		return host.AllocString(string(t))
	default:
		return host.AllocString(fmt.Sprintf("%v", t))
	}
}
