// Package user manages registered accounts for the file server. Passwords
// are stored as bcrypt hashes; authentication failures are uniform so they
// never reveal whether the email or the password was wrong.
package user
