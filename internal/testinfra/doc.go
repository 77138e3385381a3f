// Package testinfra provides fixtures for probe tests: throwaway TLS
// material and Docker-backed PostgreSQL containers.
package testinfra
