/*
Package router composes ledgers into a tree that forwards rewards and
slashes from the root down to the individual stakeholders.

Every pool of the tree is a ledger.Ledger. The root pool is addressed by the
empty path, its stakeholders are the children of the root and the pool of a
child is addressed by the path leading to it. A reward distributed at the
root is split among the children by their stake in the root pool. Nobody
below the root is visited: the reward owed to a child is only moved into its
pool when that pool is about to change or when somebody in it withdraws.
That pull always happens before the change, so a reward is split with the
weights that were in place when it was earned.

Every mutating call is atomic, on error nothing is written.
*/
package router
