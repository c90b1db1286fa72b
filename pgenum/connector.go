package pgenum

import (
	"context"
	"database/sql/driver"
	"reflect"
)

type enumConnector struct {
	base     driver.Connector
	mappings map[reflect.Type]*Mapping
}

func (c *enumConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.base.Connect(ctx)
	if err != nil {
		return nil, err
	}

	return &enumConn{Conn: conn, mappings: c.mappings}, nil
}

func (c *enumConnector) Driver() driver.Driver {
	return c.base.Driver()
}

// enumConn rewrites mapped enum arguments to their labels and forwards the
// optional driver interfaces of the wrapped connection.
type enumConn struct {
	driver.Conn
	mappings map[reflect.Type]*Mapping
}

var (
	_ driver.NamedValueChecker  = (*enumConn)(nil)
	_ driver.QueryerContext     = (*enumConn)(nil)
	_ driver.ExecerContext      = (*enumConn)(nil)
	_ driver.ConnBeginTx        = (*enumConn)(nil)
	_ driver.ConnPrepareContext = (*enumConn)(nil)
	_ driver.Pinger             = (*enumConn)(nil)
	_ driver.SessionResetter    = (*enumConn)(nil)
)

func (c *enumConn) CheckNamedValue(nv *driver.NamedValue) error {
	if nv.Value != nil {
		if m, ok := c.mappings[reflect.TypeOf(nv.Value)]; ok {
			label, err := m.Label(nv.Value)
			if err != nil {
				return err
			}

			nv.Value = label

			return nil
		}
	}

	if checker, ok := c.Conn.(driver.NamedValueChecker); ok {
		return checker.CheckNamedValue(nv)
	}

	return driver.ErrSkip
}

func (c *enumConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	q, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}

	return q.QueryContext(ctx, query, args)
}

func (c *enumConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	e, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}

	return e.ExecContext(ctx, query, args)
}

func (c *enumConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if p, ok := c.Conn.(driver.ConnPrepareContext); ok {
		return p.PrepareContext(ctx, query)
	}

	return c.Conn.Prepare(query)
}

func (c *enumConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if b, ok := c.Conn.(driver.ConnBeginTx); ok {
		return b.BeginTx(ctx, opts)
	}

	return c.Conn.Begin() //nolint:staticcheck
}

func (c *enumConn) Ping(ctx context.Context) error {
	if p, ok := c.Conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}

	return nil
}

func (c *enumConn) ResetSession(ctx context.Context) error {
	if r, ok := c.Conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}

	return nil
}
