// Package link establishes the single TCP connection between the access
// point and the station and wraps it in a Session.
//
// The access point listens on the wildcard address and serves exactly one
// client for the lifetime of the process. The station dials the fixed
// access point address. Neither side reconnects after the session ends.
package link
