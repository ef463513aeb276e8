// Package redislock provides a Redis-backed distributed lock used to
// serialize tenant provisioning across processes.
//
// It implements tenant.Locker:
//
//	client, err := redislock.Connect(ctx, cfg)
//	adapter, err := tenant.New(ctx, engine, tenantCfg,
//		tenant.WithProvisionLock(redislock.New(client, cfg)),
//	)
//
// Locks are scoped per tenant, held with a TTL against crashed owners,
// and released with a compare-and-delete so a lock that expired and was
// reacquired elsewhere is never removed by its previous owner.
package redislock
