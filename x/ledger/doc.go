/*
Package ledger implements a single level stake ledger with reward
distribution and proportional slashing in constant time per event.

Two kinds of accumulators are kept per pool. RewardPerToken grows by
amount/stake on every distributed reward and SlashPerToken grows by
amount/stake on every slash. A pool can be rewarded in several currencies,
each with its own RewardPerToken. Each stakeholder keeps a tally of all
accumulators taken at its last settlement, so its pending rewards and
pending slash are computed without visiting any other stakeholder.

Slashes are realized lazily: the nominal stake of a key is reduced by its
pending slash the next time the key deposits, withdraws or claims a reward.
Until then TotalStake holds the nominal stakes, the denominator of the slash
accumulator, and TotalCurrentStake the post slash stake every reward is
divided by.

How a slash interacts with rewards is configured per ledger, see SlashMode.
A slash that takes all the stake closes the slash epoch: TotalStake drops
to zero and the stake of earlier epochs is worth nothing, so it does not
dilute the slashes of stake deposited later.

Every ledger state lives under a nonce. ForceRefund moves a single
stakeholder to a fresh nonce and leaves everybody else behind, their stake
and rewards are still reachable with the *At methods.
*/
package ledger
