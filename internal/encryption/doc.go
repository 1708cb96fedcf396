// Package encryption provides length-preserving file encryption with AES-128 in XTS mode.
// Each file is split into fixed-size data units that are transformed in parallel, unit i
// using tweak i, so ciphertext is independent of the worker count.
// Keys are 32 bytes (a data key and a tweak key), given in hex or derived from a passphrase.
package encryption
