// Package mssql implements the Microsoft SQL Server engine for tenant
// routing on top of denisenkom/go-mssqldb.
//
// SQL Server allows USE across databases on the same server, so local
// tenants switch in place and only tenants configured on other servers
// trigger a reconnect. The engine pins a single session because the
// selected database is session state; see Engine for details.
//
//	engine := mssql.New(mssql.Config{})
//	adapter, err := tenant.New(ctx, engine, cfg)
package mssql
