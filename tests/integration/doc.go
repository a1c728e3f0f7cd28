// Package integration holds end-to-end tests that need Docker (Redis via
// testcontainers). Run them with: go test -tags integration ./tests/integration/
package integration
