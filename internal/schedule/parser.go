package schedule

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	timeFieldRe = regexp.MustCompile(`"time"\s*:\s*"\s*(\d{1,2}):(\d{1,2})\s*"`)
	tempFieldRe = regexp.MustCompile(`"temp"\s*:\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)`)
)

// Parser extracts program points from a loosely structured payload.
//
// The payload is not required to be valid JSON. Every `{ ... }` segment is
// inspected on its own; segments lacking a usable time or temperature are
// skipped instead of failing the whole payload.
type Parser struct {
	// MaxPoints caps the number of accepted points. Zero or negative means
	// DefaultMaxPoints.
	MaxPoints int
}

// NewParser returns a Parser accepting at most maxPoints points.
func NewParser(maxPoints int) Parser {
	return Parser{MaxPoints: maxPoints}
}

func (p Parser) limit() int {
	if p.MaxPoints <= 0 {
		return DefaultMaxPoints
	}
	return p.MaxPoints
}

// Parse scans raw and returns the accepted points. It never fails; an
// unusable payload yields an empty Schedule.
func (p Parser) Parse(raw string) Schedule {
	limit := p.limit()
	out := make(Schedule, 0, limit)

	pos := 0
	for len(out) < limit {
		open := strings.IndexByte(raw[pos:], '{')
		if open < 0 {
			break
		}
		open += pos

		closing := strings.IndexByte(raw[open:], '}')
		if closing < 0 {
			// unterminated object: nothing after it can be trusted
			break
		}
		closing += open

		if pt, ok := parseObject(raw[open:closing]); ok {
			out = append(out, pt)
		}
		pos = closing + 1
	}
	return out
}

// parseObject reads the time and temp fields of one object segment.
func parseObject(segment string) (Point, bool) {
	// Matches the first well-formed "time" field anywhere in the segment,
	// so a malformed earlier "time" key does not reject the point.
	tm := timeFieldRe.FindStringSubmatch(segment)
	if tm == nil {
		return Point{}, false
	}
	tp := tempFieldRe.FindStringSubmatch(segment)
	if tp == nil {
		return Point{}, false
	}

	hour, err := strconv.Atoi(tm[1])
	if err != nil {
		return Point{}, false
	}
	minute, err := strconv.Atoi(tm[2])
	if err != nil {
		return Point{}, false
	}
	at := TimeOfDay{Hour: hour, Minute: minute}
	if !at.Valid() {
		return Point{}, false
	}

	temp, err := strconv.ParseFloat(tp[1], 64)
	if err != nil || math.IsInf(temp, 0) || math.IsNaN(temp) {
		return Point{}, false
	}

	return Point{At: at, TempC: temp}, true
}
