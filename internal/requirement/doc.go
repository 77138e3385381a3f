// Package requirement parses driver requirement specifiers and checks an
// installed driver version against them.
//
// A specifier names a Go module and an optional, comma separated list of
// version clauses that must all hold:
//
//	github.com/jackc/pgx/v5>=5.0.0,<6.0.0
//	github.com/redis/go-redis/v9~=9.5
//	google.golang.org/grpc
//
// Supported operators are >=, <=, >, <, ==, != and ~= (compatible release).
// Versions compare as numeric major.minor.patch; missing components are
// zero, and pre-release or build suffixes on the installed version are
// ignored. A specifier without clauses is satisfied by any version.
package requirement
