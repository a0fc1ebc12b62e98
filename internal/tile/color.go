package tile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Color is a tile color. The ordinal is part of the tile code.
type Color uint8

const (
	Black  Color = 1
	Blue   Color = 2
	Orange Color = 3
	Red    Color = 4
)

// Colors lists every known color in code order.
var Colors = []Color{Black, Blue, Orange, Red}

var colorNames = map[Color]string{
	Black:  "BLACK",
	Blue:   "BLUE",
	Orange: "ORANGE",
	Red:    "RED",
}

func (c Color) String() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return fmt.Sprintf("COLOR(%d)", uint8(c))
}

// ParseColor maps a color name (any case) to a Color.
func ParseColor(name string) (Color, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for c, cn := range colorNames {
		if cn == n {
			return c, nil
		}
	}
	return 0, fmt.Errorf("tile: unknown color %q", name)
}

// MarshalJSON writes the color name.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON reads a color name.
func (c *Color) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	c2, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = c2
	return nil
}
