/*
Package weavetest provides helpers for testing the engine: deterministic
addresses and amount assertions. Generic assertions live in the assert
subpackage.
*/
package weavetest
