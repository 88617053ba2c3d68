// Package discovery finds Arctic Spa controllers on the local network.
//
// Controllers do not announce themselves; they answer. A probe sends the
// plain-text query "Query,BlueFalls," to UDP port 9131 and a controller
// replies "Response,BlueFalls,<serial>" to the querying socket. Scanner
// sweeps a subnet with bounded concurrency:
//
//	scanner := discovery.NewScanner()
//	hosts, err := scanner.ScanCIDR(ctx, discovery.LocalIP()+"/24")
//
// A scan of a /24 completes in about a second: fifty probes run at once
// and each waits at most a second for an answer.
package discovery
