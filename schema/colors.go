package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an index into the fitting engine's color palette.
type Color int

// Base palette entries. Offsets such as kGreen-9 are added to these.
const (
	KWhite   Color = 0
	KBlack   Color = 1
	KGray    Color = 920
	KRed     Color = 632
	KGreen   Color = 416
	KBlue    Color = 600
	KYellow  Color = 400
	KMagenta Color = 616
	KCyan    Color = 432
	KOrange  Color = 800
	KSpring  Color = 820
	KTeal    Color = 840
	KAzure   Color = 860
	KViolet  Color = 880
	KPink    Color = 900
)

// paletteNames maps palette names to their base index.
var paletteNames = map[string]Color{
	"kWhite":   KWhite,
	"kBlack":   KBlack,
	"kGray":    KGray,
	"kRed":     KRed,
	"kGreen":   KGreen,
	"kBlue":    KBlue,
	"kYellow":  KYellow,
	"kMagenta": KMagenta,
	"kCyan":    KCyan,
	"kOrange":  KOrange,
	"kSpring":  KSpring,
	"kTeal":    KTeal,
	"kAzure":   KAzure,
	"kViolet":  KViolet,
	"kPink":    KPink,
}

// ParseColor resolves "kGreen-9", "kPink", "kBlue+2" or a plain integer into a Color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return KBlack, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("color index must not be negative: %d", n)
		}
		return Color(n), nil
	}

	name, offset := s, 0
	if i := strings.IndexAny(s, "+-"); i > 0 {
		name = strings.TrimSpace(s[:i])
		n, err := strconv.Atoi(strings.ReplaceAll(s[i:], " ", ""))
		if err != nil {
			return 0, fmt.Errorf("invalid color offset in %q: %w", s, err)
		}
		offset = n
	}

	base, ok := paletteNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown color %q", name)
	}
	c := base + Color(offset)
	if c < 0 {
		return 0, fmt.Errorf("color %q resolves to a negative index", s)
	}
	return c, nil
}

// Name renders the color back to its palette form when it lies in a base
// color's shade range (base-10 to base+4), otherwise as a plain integer.
func (c Color) Name() string {
	best, bestName := -1, ""
	for name, base := range paletteNames {
		d := int(c - base)
		if d < -10 || d > 4 {
			continue
		}
		if best < 0 || abs(d) < best || (abs(d) == best && name < bestName) {
			best, bestName = abs(d), name
		}
	}
	if best < 0 {
		return strconv.Itoa(int(c))
	}
	d := int(c - paletteNames[bestName])
	switch {
	case d > 0:
		return fmt.Sprintf("%s+%d", bestName, d)
	case d < 0:
		return fmt.Sprintf("%s%d", bestName, d)
	default:
		return bestName
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
