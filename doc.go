// Package calc implements a small authenticated arithmetic API: user
// registration and login over bearer tokens, and a relational history of
// the arithmetic operations performed by authenticated users.
//
// The package holds the auth core (password hashing, token issue/verify,
// identity resolution) and the bun-backed repositories. The HTTP surface
// lives in the server package, the request middleware in middleware/bearer.
package calc
