/*
Package errors implements the error kinds used across the engine.

Every error returned by an operation wraps one of the root errors registered
with Register. Callers test for a kind with Is, which walks through any
wrapping, and hosts translate an error into a stable numeric code with Code.

If you want to register a custom error - use Register(code, description).
Extensions register their own kinds next to the code that returns them,
see x/collateral.

There is also support for stacktraces. Please ensure you create the custom
error using errors.Wrap(err, "...") at the point of creation to ensure we
attach a stacktrace. If you wrap multiple times, we only record the first
wrap with the stacktrace.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
for the error
	%s is just the error message
	%+v is the full stack trace
*/
package errors
