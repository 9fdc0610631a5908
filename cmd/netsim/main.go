// Command netsim is a discrete-event network routing simulator: it loads
// a topology and workload, replays them against a chosen routing
// protocol (or every registered one, for comparison), and reports packet
// loss, latency, and throughput.
package main

import "github.com/trevorKirkby/network-routing-simulation/cmd/netsim/commands"

func main() {
	commands.Execute()
}
