/*
Package oracle provides the comparison capability used to break placement ties
on confidential node load.

The scheduler never sees a node's load. It holds an opaque types.LoadHandle and
asks a Comparator whether one handle is greater than another. Any scheme that
answers that question deterministically can back the scheduler: a homomorphic
comparison service, a secure enclave, or plain numbers.

Two implementations ship with burrow:

  - Numeric: handles are cleartext big-endian uint64 values. For deployments
    where load is not confidential, and for tests.
  - Sealed: handles are AES-256-GCM ciphertexts produced by Sealed.Seal with a
    key shared between workers and the oracle. GreaterThan opens both handles
    internally; the plaintext never leaves the package.

Handles are validated when a node registers or reports load, so GreaterThan is
never asked to compare a handle it cannot read during a placement.

	o, err := oracle.NewSealed(oracle.DeriveKey(passphrase))
	h, err := o.Seal(currentLoad)
	// send h to the manager as the node's load
*/
package oracle
