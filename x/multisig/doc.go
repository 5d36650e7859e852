/*
Package multisig implements passkey multisignature wallets.

A wallet is registered once with an ordered list of secp256r1 signer keys
and a threshold. Anyone may deposit into a wallet. Spending happens in
three steps: a signer proposes a transaction, signers approve it with
signatures over the proposal summary, and once the number of distinct
approvals reaches the threshold the proposal can be executed, debiting the
wallet balance.

Wallet configuration is immutable after creation.

Every handler's Check runs the same state transition as Deliver on the
check store, so transactions depending on each other can be accepted into
the mempool in the same block.
*/
package multisig
