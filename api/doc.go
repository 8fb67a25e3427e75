// Package api
// Author: momentics <momentics@gmail.com>
//
// Shared contracts for the hioload-iocp completion-port core: completion
// value types, error taxonomy, access rights, quota accounting, and the
// native-record hook. Concrete implementations live in pool/, queue/,
// port/ and facade/.
package api
