// Package topology parses the CSV description of a simulated network's
// media and their wiring, and the CSV workload of packets to inject.
package topology

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// MediumSpec describes one row of a topology file: a single medium
// (plain link or router) before it is wired to the rest of the network
// or bound to a live noise sequence. A row never names a specific
// routing-protocol variant: field 6 is just the router/link flag, and
// every router-flagged medium in a run is constructed with whichever
// single algorithm the run selected (CLI/config "algorithm" name), so
// that netsim compare can replay the same topology under each variant.
type MediumSpec struct {
	ID       int
	Pathways int
	Overhead int
	ByteRate float64
	DropRate float64
	Logic    bool // true: router, constructed with the run's selected algorithm. false: plain link.
}

// IsRouter reports whether this medium runs routing-protocol logic.
func (s MediumSpec) IsRouter() bool {
	return s.Logic
}

// Edge is a link medium's inline endpoint declaration: Link is the id of
// the row that declared it (a degree-2 link medium), and A/B are the two
// router ids it connects. Wiring this means Link gains A and B as
// connections, and A and B each gain Link as a connection — the link
// medium is itself a node in the graph, not a direct router-to-router
// edge (spec.md §4.8).
type Edge struct {
	Link int
	A, B int
}

// Topology is the fully parsed, unwired description of a network.
type Topology struct {
	Media []MediumSpec
	Edges []Edge
}

// LoadTopology reads a topology CSV. Each row has 6 fields (id, pathways,
// overhead, byte_rate, drop_rate, logic) or 7 (the same, plus a trailing
// "[a b]" bidirectional edge declaration). logic is 0 or 1: 1 marks the
// medium as a router, constructed with the run's selected algorithm.
// Blank lines and lines starting with '#' are ignored.
func LoadTopology(r io.Reader) (Topology, error) {
	reader := csv.NewReader(skipCommentsAndBlanks(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var top Topology
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Topology{}, fmt.Errorf("topology: row %d: %w", rowNum, err)
		}
		rowNum++

		spec, edge, hasEdge, err := parseTopologyRow(record)
		if err != nil {
			return Topology{}, fmt.Errorf("topology: row %d: %w", rowNum, err)
		}
		top.Media = append(top.Media, spec)
		if hasEdge {
			edge.Link = spec.ID
			top.Edges = append(top.Edges, edge)
		}
	}
	return top, nil
}

func parseTopologyRow(fields []string) (MediumSpec, Edge, bool, error) {
	if len(fields) != 6 && len(fields) != 7 {
		return MediumSpec{}, Edge{}, false, fmt.Errorf("expected 6 or 7 fields, got %d", len(fields))
	}

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return MediumSpec{}, Edge{}, false, fmt.Errorf("id: %w", err)
	}
	pathways, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return MediumSpec{}, Edge{}, false, fmt.Errorf("pathways: %w", err)
	}
	overhead, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return MediumSpec{}, Edge{}, false, fmt.Errorf("overhead: %w", err)
	}
	byteRate, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return MediumSpec{}, Edge{}, false, fmt.Errorf("byte_rate: %w", err)
	}
	dropRate, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return MediumSpec{}, Edge{}, false, fmt.Errorf("drop_rate: %w", err)
	}
	logic, err := parseLogic(fields[5])
	if err != nil {
		return MediumSpec{}, Edge{}, false, fmt.Errorf("logic: %w", err)
	}

	spec := MediumSpec{
		ID:       id,
		Pathways: pathways,
		Overhead: overhead,
		ByteRate: byteRate,
		DropRate: dropRate,
		Logic:    logic,
	}

	if len(fields) == 6 {
		return spec, Edge{}, false, nil
	}

	edge, err := parseEdge(fields[6])
	if err != nil {
		return MediumSpec{}, Edge{}, false, fmt.Errorf("edge: %w", err)
	}
	return spec, edge, true, nil
}

// parseLogic parses the router/link flag: "0" for a plain link, "1" for
// a router, per spec's "field 5(6) is 0/1 (logic)".
func parseLogic(field string) (bool, error) {
	switch strings.TrimSpace(field) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("expected 0 or 1, got %q", field)
	}
}

// parseEdge parses the "[a b]" connection-pair syntax.
func parseEdge(field string) (Edge, error) {
	trimmed := strings.TrimSpace(field)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	parts := strings.Fields(trimmed)
	if len(parts) != 2 {
		return Edge{}, fmt.Errorf("expected \"[a b]\", got %q", field)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return Edge{}, fmt.Errorf("endpoint a: %w", err)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return Edge{}, fmt.Errorf("endpoint b: %w", err)
	}
	return Edge{A: a, B: b}, nil
}

// WorkloadEntry is one packet to inject at a specific tick.
type WorkloadEntry struct {
	Tick     int
	Source   int
	Dest     int
	ByteSize int
}

// LoadWorkload reads a workload CSV of "tick,source,dest,byte_size" rows,
// sorted ascending by tick (stable, so same-tick entries keep file
// order).
func LoadWorkload(r io.Reader) ([]WorkloadEntry, error) {
	reader := csv.NewReader(skipCommentsAndBlanks(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var entries []WorkloadEntry
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("workload: row %d: %w", rowNum, err)
		}
		rowNum++

		if len(record) != 4 {
			return nil, fmt.Errorf("workload: row %d: expected 4 fields, got %d", rowNum, len(record))
		}
		tick, err1 := strconv.Atoi(strings.TrimSpace(record[0]))
		source, err2 := strconv.Atoi(strings.TrimSpace(record[1]))
		dest, err3 := strconv.Atoi(strings.TrimSpace(record[2]))
		byteSize, err4 := strconv.Atoi(strings.TrimSpace(record[3]))
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("workload: row %d: malformed fields", rowNum)
		}
		entries = append(entries, WorkloadEntry{Tick: tick, Source: source, Dest: dest, ByteSize: byteSize})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Tick < entries[j].Tick })
	return entries, nil
}

// skipCommentsAndBlanks filters out blank lines and lines starting with
// '#' before handing the stream to encoding/csv, which has no native
// comment support for arbitrary '#' placement.
func skipCommentsAndBlanks(r io.Reader) io.Reader {
	scanner := bufio.NewScanner(r)
	var kept strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kept.WriteString(line)
		kept.WriteByte('\n')
	}
	return strings.NewReader(kept.String())
}
