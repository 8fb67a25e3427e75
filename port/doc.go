// Package port
// Author: momentics <momentics@gmail.com>
//
// Completion-port object: lifecycle, the Post/Remove packet protocol,
// and teardown drain. A port wraps one bounded-concurrency queue and a
// packet allocator; the handle-based public surface lives in facade/.
package port
