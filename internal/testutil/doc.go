// Package testutil provides test doubles shared by service tests.
package testutil
