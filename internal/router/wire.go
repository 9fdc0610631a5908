package router

import (
	"fmt"
	"strconv"
	"strings"
)

// Control packet content is a short, colon-delimited textual wire format.
// Flooded message types (RREQ, RREP, RERR) carry a trailing (source,
// count) broadcast tag used for duplicate-flood suppression: source is
// the id of the router that originated the flood, count its
// monotonically increasing broadcast counter at the time of origination.
// A receiver that has already seen an equal-or-higher count from that
// source drops the packet instead of re-flooding it.

type broadcastTag struct {
	Source int
	Count  int
}

func (t broadcastTag) encode() string {
	return fmt.Sprintf("%d:%d", t.Source, t.Count)
}

func decodeTag(fields []string) (broadcastTag, bool) {
	if len(fields) != 2 {
		return broadcastTag{}, false
	}
	src, err1 := strconv.Atoi(fields[0])
	cnt, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return broadcastTag{}, false
	}
	return broadcastTag{Source: src, Count: cnt}, true
}

const (
	helloContent = "HELLO"

	typeRREQ      = "RREQ"
	typeRREP      = "RREP"
	typeRERR      = "RERR"
	typeKeepalive = "KEEPALIVE"
	typeUpdate    = "UPDATE"
)

type rreqMsg struct {
	Dest     int
	Sequence int
	Tag      broadcastTag
}

func encodeRREQ(dest, sequence int, tag broadcastTag) string {
	return fmt.Sprintf("%s:%d:%d:%s", typeRREQ, dest, sequence, tag.encode())
}

func decodeRREQ(content string) (rreqMsg, bool) {
	fields := strings.Split(content, ":")
	if len(fields) != 5 || fields[0] != typeRREQ {
		return rreqMsg{}, false
	}
	dest, err1 := strconv.Atoi(fields[1])
	seq, err2 := strconv.Atoi(fields[2])
	tag, ok := decodeTag(fields[3:])
	if err1 != nil || err2 != nil || !ok {
		return rreqMsg{}, false
	}
	return rreqMsg{Dest: dest, Sequence: seq, Tag: tag}, true
}

type rrepMsg struct {
	Target   int
	Sequence int
	NextHop  int
	Distance int
	Tag      broadcastTag
}

func encodeRREP(target, sequence, nextHop, distance int, tag broadcastTag) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d:%s", typeRREP, target, sequence, nextHop, distance, tag.encode())
}

func decodeRREP(content string) (rrepMsg, bool) {
	fields := strings.Split(content, ":")
	if len(fields) != 7 || fields[0] != typeRREP {
		return rrepMsg{}, false
	}
	target, e1 := strconv.Atoi(fields[1])
	seq, e2 := strconv.Atoi(fields[2])
	nextHop, e3 := strconv.Atoi(fields[3])
	dist, e4 := strconv.Atoi(fields[4])
	tag, ok := decodeTag(fields[5:])
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil || !ok {
		return rrepMsg{}, false
	}
	return rrepMsg{Target: target, Sequence: seq, NextHop: nextHop, Distance: dist, Tag: tag}, true
}

type rerrMsg struct {
	Removed []int
	Tag     broadcastTag
}

func encodeRERR(removed []int, tag broadcastTag) string {
	strs := make([]string, len(removed))
	for i, id := range removed {
		strs[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("%s:%s:%s", typeRERR, strings.Join(strs, ","), tag.encode())
}

func decodeRERR(content string) (rerrMsg, bool) {
	fields := strings.Split(content, ":")
	if len(fields) != 4 || fields[0] != typeRERR {
		return rerrMsg{}, false
	}
	var removed []int
	if fields[1] != "" {
		for _, s := range strings.Split(fields[1], ",") {
			id, err := strconv.Atoi(s)
			if err != nil {
				return rerrMsg{}, false
			}
			removed = append(removed, id)
		}
	}
	tag, ok := decodeTag(fields[2:])
	if !ok {
		return rerrMsg{}, false
	}
	return rerrMsg{Removed: removed, Tag: tag}, true
}

// broadcastTagOf extracts the (source, count) loop-suppression tag from
// any flooded message type, used by AODV's receive-side dedup check
// before the type-specific payload is even decoded.
func broadcastTagOf(content string) (broadcastTag, bool) {
	switch {
	case strings.HasPrefix(content, typeRREQ+":"):
		msg, ok := decodeRREQ(content)
		return msg.Tag, ok
	case strings.HasPrefix(content, typeRREP+":"):
		msg, ok := decodeRREP(content)
		return msg.Tag, ok
	case strings.HasPrefix(content, typeRERR+":"):
		msg, ok := decodeRERR(content)
		return msg.Tag, ok
	default:
		return broadcastTag{}, false
	}
}

type bgpRoute struct {
	Path []int
	Sign bool
}

// encodeUpdate serializes a batch of advertised/withdrawn BGP-lite
// routes as a JSON-free, simulation-local format: one "a.b.c=sign" term
// per route (the path's ids joined by '.', sign 1 to advertise or 0 to
// withdraw), separated by ';'.
func encodeUpdate(routes []bgpRoute) string {
	terms := make([]string, len(routes))
	for i, r := range routes {
		strs := make([]string, len(r.Path))
		for j, id := range r.Path {
			strs[j] = strconv.Itoa(id)
		}
		sign := "0"
		if r.Sign {
			sign = "1"
		}
		terms[i] = strings.Join(strs, ".") + "=" + sign
	}
	return typeUpdate + ":" + strings.Join(terms, ";")
}

func decodeUpdate(content string) ([]bgpRoute, bool) {
	if !strings.HasPrefix(content, typeUpdate+":") {
		return nil, false
	}
	body := strings.TrimPrefix(content, typeUpdate+":")
	if body == "" {
		return nil, true
	}
	terms := strings.Split(body, ";")
	routes := make([]bgpRoute, 0, len(terms))
	for _, term := range terms {
		parts := strings.SplitN(term, "=", 2)
		if len(parts) != 2 {
			return nil, false
		}
		idStrs := strings.Split(parts[0], ".")
		path := make([]int, len(idStrs))
		for i, s := range idStrs {
			id, err := strconv.Atoi(s)
			if err != nil {
				return nil, false
			}
			path[i] = id
		}
		routes = append(routes, bgpRoute{Path: path, Sign: parts[1] == "1"})
	}
	return routes, true
}
