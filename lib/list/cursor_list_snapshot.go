package list

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap/zapcore"
)

const cursorMarker = "^"

// CursorSnapshot is a copy of the list values in head to tail order.
// Gap is the number of values before the cursor.
type CursorSnapshot struct {
	Values []int
	Gap    int
}

// String prints the values space separated with ^ at the cursor gap,
// e.g. "1 ^ 3", "^ 1 2 3", "1 2 3 ^" and "^" for an empty list.
func (s CursorSnapshot) String() string {
	tokens := lo.Map(s.Values, func(v int, _ int) string {
		return strconv.Itoa(v)
	})
	gap := lo.Clamp(s.Gap, 0, len(tokens))
	tokens = append(tokens[:gap], append([]string{cursorMarker}, tokens[gap:]...)...)
	return strings.Join(tokens, " ")
}

func (s CursorSnapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("gap", s.Gap)
	enc.AddInt("len", len(s.Values))
	return enc.AddArray("values", zapcore.ArrayMarshalerFunc(func(ae zapcore.ArrayEncoder) error {
		for _, v := range s.Values {
			ae.AppendInt(v)
		}
		return nil
	}))
}
