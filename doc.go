/*
Package stakeweave defines the interfaces shared by the stake weighted reward
engine: storage, identifiers, genesis options and the logger carried in the
context.

Domain logic lives in the extensions under x/. A ledger (x/ledger) keeps the
reward and slash accumulators of one pool, a router (x/router) composes
ledgers into a tree and cascades rewards from the root down to the leaves,
and the collateral model (x/collateral) turns collateral, exchange rates and
thresholds into stake deltas pushed through the router. The app package wires
everything into a single engine with one exclusive write path.

All extension code is written against the KVStore interfaces defined here.
Operations that must be all-or-nothing take a CacheableKVStore and run inside
a cache wrap that is only written on success.
*/
package stakeweave
