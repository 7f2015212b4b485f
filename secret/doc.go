// Package secret resolves credentials referenced from configuration.
//
// Configuration values pass through strict ${VAR} expansion and then
// secret references of the form
//
//	secretref:<provider>:<ref>
//
// are replaced by the provider's value, either as the whole value or inline
// ("Bearer secretref:env:TOKEN"). Two providers ship with the package:
// "env" reads another environment variable and "file" reads a file, as
// mounted by container secret stores.
package secret
