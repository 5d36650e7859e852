/*
Package errors implements the error model used across the ledger.

Every error returned to a client must wrap one of the registered root errors.
A root error carries a stable numeric code that is exposed as the ABCI result
code, so clients can distinguish failures without parsing messages.

Generic root errors live in this package. Extensions that need their own
codes call Register(code, description) during package initialisation, see
x/multisig for an example.

Create errors at the failure site with ErrXyz.New("...") or
errors.Wrap(err, "...") so that a stack trace is attached. Use %+v to print
the full trace, %s for the message only.
*/
package errors
