/*
Package weave defines all common interfaces that tie together the ledger
subpackages, as well as implementations of some of the simpler components
(when interfaces would be too much overhead).

We pass context through context.Context between app, decorators and
handlers. Block information (height, time, chain id) and the logger are
stored in the context by the application and read back with the Get*
helpers.

There should exist two functions for every XYZ of type T that we want to
support in Context:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ may panic if the value was previously set to avoid lower-level
modules overwriting the value (eg. height, chain id).
*/
package weave
