// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection for the completion-port core.
// Allocator tiers and ports register named probes; operators pull
// consistent snapshots without touching hot paths.
package control
