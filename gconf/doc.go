/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Every package keeps a single configuration object stored under "_c:<pkg>".
The object is validated before it is written, and can be loaded from the
"conf" section of the genesis options.
*/
package gconf
