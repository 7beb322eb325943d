/*
Package wallet is the entry point for every wallet operation exposed to
transports.

It validates nothing itself. Requests are handed to the transfer engine, the
deposit processor or the gift orchestrator, and the facade takes care of the
work that follows a commit:

  - invalidating cached balances for every wallet that changed
  - emitting balance.changed events for transfers and deposits
  - recording operation metrics

Usage:

	svc := wallet.NewService(store, users, transfers, deposits, gifts,
		cacheService, dispatcher, wallet.NewPrometheusMetrics(prometheus.DefaultRegisterer))

	res, err := svc.Transfer(ctx, actorID, toUserID, "2.50000000")

Amounts enter as decimal strings with at most eight fractional digits and
balances leave formatted with exactly eight.

Errors are DomainErrors from the internal/errors package; use errors.Is with
the sentinels there, or errors.KindOf to map a failure to a transport status.
*/
package wallet
