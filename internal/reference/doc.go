// Package reference resolves the positional argument of connect2vid into a
// Connect recording identifier.
//
// Three shapes are accepted and tried in a fixed priority order: a local
// archive path ending in ".zip" (the file stem is the identifier), a bare
// 12 character identifier, and a URL whose path segment after the hosting
// domain is the identifier. The order matters: a 12 character archive stem
// such as "abcdefgh.zip" must be treated as an archive, not an identifier.
package reference
