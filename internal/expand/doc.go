// Package expand resolves interpolation and command substitution inside
// env values.
//
// Supported syntax:
//
//	HOST=${BASE_HOST}          reference, same source or ambient namespace
//	PORT=${PORT:-5432}         reference with default
//	USER=$PGUSER               bare reference
//	RELEASE=$(git rev-parse HEAD)  command substitution
//
// Expansion happens per source, against the namespace as it stands at that
// point of the run, so later sources can reference variables injected by
// earlier ones.
package expand
