package records

import (
	"fmt"
	"strings"
)

// Kind identifies a record type and the queue holding it.
type Kind int

// Record kinds.
const (
	KindRaw Kind = iota
	KindReport
	KindExtendedReport
	KindScd
)

var kindNames = []string{"raw", "report", "ext", "scd"}

// Kinds lists all record kinds.
var Kinds = []Kind{KindRaw, KindReport, KindExtendedReport, KindScd}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	for n, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(n), nil
		}
	}
	return 0, fmt.Errorf("unknown record kind %q", s)
}

// Record is implemented by every decoded record.
type Record interface {
	Kind() Kind
}

// ReportFormat selects the algorithm report layout. It is chosen once
// when the hub is constructed.
type ReportFormat int

// Report formats.
const (
	ReportNormal ReportFormat = iota
	ReportExtended
)

// Size returns the wire size of the report.
func (f ReportFormat) Size() int {
	if f == ReportExtended {
		return AlgoExtendedSize
	}
	return AlgoSize
}

// Kind returns the record kind of the report.
func (f ReportFormat) Kind() Kind {
	if f == ReportExtended {
		return KindExtendedReport
	}
	return KindReport
}

// String implements fmt.Stringer.
func (f ReportFormat) String() string {
	if f == ReportExtended {
		return "extended"
	}
	return "normal"
}

// ParseReportFormat parses "normal" or "extended".
func ParseReportFormat(s string) (ReportFormat, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return ReportNormal, nil
	case "extended", "ext":
		return ReportExtended, nil
	}
	return ReportNormal, fmt.Errorf("unknown report format %q", s)
}

// ShortError reports a buffer too small for a record.
type ShortError struct {
	Kind Kind
	Want int
	Got  int
}

// Error implements error.
func (e *ShortError) Error() string {
	return fmt.Sprintf("%s record needs %d bytes, got %d", e.Kind, e.Want, e.Got)
}

func checkLen(k Kind, b []byte, n int) error {
	if len(b) < n {
		return &ShortError{Kind: k, Want: n, Got: len(b)}
	}
	return nil
}

func u24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func putU24(b []byte, v uint32) {
	b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
}

func flag(b byte) bool {
	return b != 0
}

func flagByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
