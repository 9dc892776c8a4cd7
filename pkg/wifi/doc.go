// Package wifi brings up the wireless side of both nodes.
//
// The access point node only needs a configuration (SSID, passphrase,
// channel, client limit) which is rendered for hostapd, and optionally
// watches stations joining and leaving.
//
// The station node runs an association state machine fed by radio events:
// the radio reports it started, every failed association is reported as a
// disconnect and answered with a reconnect request until the retry budget
// is spent, and an assigned address ends the sequence. The caller waits for
// exactly one outcome, Associated or Failed, bounded by a timeout.
package wifi
