// Package session implements the bearer-token session store gating file
// operations. Tokens are opaque 256-bit values mapped to {email, expiry};
// sessions expire a fixed TTL (24h by default) after issuance, checked by
// wall-clock comparison on every Resolve.
package session
