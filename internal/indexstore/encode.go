package indexstore

import (
	"strconv"
	"strings"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

// EncodeKey renders an IndexKey to a string suitable for use as a Go
// map key. domain.IndexKey carries a slice field (Composite) and so
// is not itself comparable; HashIndex needs a comparable
// representation for O(1) point lookup, and callers that need to
// deduplicate keys by value (e.g. the journal's batch PK checks) use
// the same encoding.
func EncodeKey(k domain.IndexKey) string {
	var b strings.Builder
	encodeKeyInto(&b, k)
	return b.String()
}

func encodeKey(k domain.IndexKey) string { return EncodeKey(k) }

func encodeKeyInto(b *strings.Builder, k domain.IndexKey) {
	switch k.Kind {
	case domain.KindNull:
		b.WriteString("N")
	case domain.KindInt64:
		b.WriteString("I")
		b.WriteString(strconv.FormatInt(k.Int64, 10))
	case domain.KindString:
		b.WriteString("S")
		b.WriteString(strconv.Itoa(len(k.String)))
		b.WriteByte(':')
		b.WriteString(k.String)
	case domain.KindComposite:
		b.WriteString("C")
		b.WriteString(strconv.Itoa(len(k.Composite)))
		for _, part := range k.Composite {
			b.WriteByte('|')
			encodeKeyInto(b, part)
		}
	}
}
