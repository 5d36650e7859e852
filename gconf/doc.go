/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration object stored under "_c:<pkg>".
The value is loaded from the "conf" section of the genesis file and read
back by handlers for every transaction.

Not being able to get a configuration value is a critical condition for the
application and there is no recovery path for the client. Use Load where
the error can be returned and MustLoad where it cannot.
*/
package gconf
