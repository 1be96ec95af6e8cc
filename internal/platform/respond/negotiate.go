package respond

import (
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. Invalid or out of range q
// values count as 1.0; a repeated q parameter keeps the last one.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		params := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		if mt == "" {
			continue
		}
		typ, subtype, ok := strings.Cut(mt, "/")
		if !ok {
			subtype = "*"
		}
		mr := mediaRange{typ: strings.TrimSpace(typ), subtype: strings.TrimSpace(subtype), q: 1.0}
		for _, p := range params[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.ToLower(strings.TrimSpace(k)) != "q" {
				continue
			}
			q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || q < 0 || q > 1 {
				q = 1.0
			}
			mr.q = q
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity ranks how closely a range names format ("json" or "cbor"); -1 means no match.
func (m mediaRange) specificity(format string) int {
	switch {
	case m.typ == "*" && m.subtype == "*":
		return 0
	case m.typ != "application":
		return -1
	case m.subtype == "*":
		return 1
	case m.subtype == "*+"+format:
		return 2
	case m.subtype == format:
		return 3
	case m.subtype == "problem+"+format:
		return 4
	}
	return -1
}

// preference returns the q value of the most specific range matching format.
func preference(ranges []mediaRange, format string) (q float64, rank int) {
	rank = -1
	for _, r := range ranges {
		s := r.specificity(format)
		if s > rank || (s == rank && r.q > q) {
			rank, q = s, r.q
		}
	}
	if rank < 0 {
		return 0, -1
	}
	return q, rank
}

// selectFormat reports whether the response should be CBOR. The q value decides first,
// specificity breaks ties, and JSON wins anything still tied.
func selectFormat(accept string) bool {
	ranges := parseAccept(accept)
	if len(ranges) == 0 {
		return false
	}
	cq, cs := preference(ranges, "cbor")
	if cq <= 0 {
		return false
	}
	jq, js := preference(ranges, "json")
	if cq != jq {
		return cq > jq
	}
	return cs > js
}
