// Package mysql implements the MySQL engine for tenant routing on top of
// go-sql-driver/mysql.
//
// MySQL treats databases and schemas as the same thing, so one engine
// serves both isolation styles: tenants on the connected server are
// switched in place with USE, and tenants configured on other servers
// are reached by reconnecting. The engine pins a single session because
// USE is session state; see Engine for details.
//
//	engine := mysql.New(mysql.Config{})
//	adapter, err := tenant.New(ctx, engine, cfg)
package mysql
