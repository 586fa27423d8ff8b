// Package ports defines the interfaces that infrastructure adapters implement.
// Services depend only on these, so each adapter can be swapped or mocked.
package ports
