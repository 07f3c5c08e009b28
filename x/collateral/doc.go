/*
Package collateral turns collateral deposits into reward weights.

Rewards are routed through three levels. The root pool is split between
currencies by their capacity, the sum of the contributions of their vaults
divided by the exchange rate of the currency. The pool of a currency is split
between vaults by their contribution, the collateral of the vault divided by
its secure threshold. The pool of a vault holds its collateral, deposited by
the vault itself and by its nominators, and is split by the amount each of
them deposited. Slashes hit the pool of a single vault.

Every change is computed as a delta against the stakes already stored, so a
change of one vault never requires visiting another.
*/
package collateral
