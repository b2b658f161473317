// Package memzero wipes key material held in byte slices.
package memzero

import "runtime"

// Zero overwrites every given slice with zeros.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
		runtime.KeepAlive(b)
	}
}
