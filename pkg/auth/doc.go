// Package auth stores the Instagram credential pair.
//
// The username lives in the general configuration; the password is
// encrypted with ChaCha20-Poly1305 under a locally generated key and
// written to a file separate from both the key and the configuration.
// Both the key file and the credential file carry owner-only
// permissions. A system-keychain backend is layered in front of the
// file vault when one is available.
//
// The key is created lazily on first use and must never be regenerated
// while ciphertext encrypted under the old key still exists. Creation
// is not safe under concurrent first-run processes; see LoadOrCreateKey.
package auth
