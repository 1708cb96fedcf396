// Package dispatch splits a byte buffer into fixed-size data units and runs a tweakable
// cipher over them on a pool of workers.
//
// Workers pull units from a shared Cursor, one at a time. Each unit's tweak is its
// sequential index, so the output does not depend on how many workers ran or in which
// order they finished. The last unit may be shorter than the configured unit size.
package dispatch
