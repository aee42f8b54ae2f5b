// Package secure provides memory-safe handling of secret values between
// retrieval from Vault and their point of use.
//
// The package wraps the memguard library so that fetched secrets are:
//
//   - Encrypted at rest in memory (XSalsa20Poly1305)
//   - Protected from swapping via mlock
//   - Securely wiped when no longer needed
//   - Protected from buffer overflow via guard pages
//
// The main consumer is the exec command, which holds secret environment
// values in enclaves and reveals them only immediately before starting the
// child process.
//
// # Usage
//
//	buf, err := secure.NewSecureBufferFromString(value)
//	if err != nil {
//	    // Handle error - may indicate mlock unavailable
//	}
//	defer buf.Destroy()
//
//	plaintext, err := buf.Reveal()
//	if err != nil {
//	    // Handle error
//	}
//
// # Platform Behavior
//
// Memory locking varies by platform: Linux requires RLIMIT_MEMLOCK headroom,
// macOS works out of the box, Windows uses VirtualLock. If mlock fails the
// enclave degrades to standard memory rather than failing the operation.
//
// # Security Guarantees
//
// Core dumps and swap will not contain plaintext secrets while values sit in
// enclaves, and working buffers are zeroed after each Reveal. The package
// does NOT protect against an attacker with root access to the running
// process or hardware-level attacks.
package secure
