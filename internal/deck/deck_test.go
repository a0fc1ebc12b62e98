package deck

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robalobadob/rummikub/internal/tile"
)

func TestValidate(t *testing.T) {
	validateTests := []struct {
		name   string
		modify func(*Config)
		wantOk bool
	}{
		{
			name:   "default",
			modify: func(*Config) {},
			wantOk: true,
		},
		{
			name:   "no colors",
			modify: func(c *Config) { c.Colors = nil },
		},
		{
			name:   "duplicate color",
			modify: func(c *Config) { c.Colors = []tile.Color{tile.Red, tile.Red, tile.Blue} },
		},
		{
			name:   "unknown color",
			modify: func(c *Config) { c.Colors = []tile.Color{tile.Red, 7} },
		},
		{
			name:   "inverted ranks",
			modify: func(c *Config) { c.LowRank, c.HighRank = 9, 3 },
		},
		{
			name:   "zero copies",
			modify: func(c *Config) { c.Copies = 0 },
		},
		{
			name:   "short groupings",
			modify: func(c *Config) { c.MinLen = 1 },
		},
		{
			name:   "long groupings",
			modify: func(c *Config) { c.MinLen = MaxMinLen + 1 },
		},
		{
			name:   "too many copies",
			modify: func(c *Config) { c.Copies = MaxCopies + 1 },
		},
		{
			name:   "too many wildcards",
			modify: func(c *Config) { c.WildsPerCopy = MaxWilds/c.Copies + 1 },
		},
		{
			name: "oversized custom deck",
			modify: func(c *Config) {
				c.HighRank = 40
				c.WildsPerCopy = 10
				c.MinLen = 12
			},
		},
		{
			name: "largest limits",
			modify: func(c *Config) {
				c.Copies = MaxCopies
				c.WildsPerCopy = MaxWilds / MaxCopies
				c.MinLen = MaxMinLen
			},
			wantOk: true,
		},
		{
			name: "nothing formable",
			modify: func(c *Config) {
				c.Colors = []tile.Color{tile.Red, tile.Blue}
				c.LowRank, c.HighRank = 1, 2
			},
		},
		{
			name: "runs only",
			modify: func(c *Config) {
				c.Colors = []tile.Color{tile.Red, tile.Blue}
			},
			wantOk: true,
		},
		{
			name: "groups only",
			modify: func(c *Config) {
				c.LowRank, c.HighRank = 5, 6
			},
			wantOk: true,
		},
	}
	for _, test := range validateTests {
		cfg := Default()
		test.modify(&cfg)
		err := cfg.Validate()
		switch {
		case !test.wantOk:
			if !errors.Is(err, ErrConfig) {
				t.Errorf("%v: wanted ErrConfig, got %v", test.name, err)
			}
		case err != nil:
			t.Errorf("%v: unwanted error: %v", test.name, err)
		}
	}
}

func TestNewStandard(t *testing.T) {
	d, err := New(Default())
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if want := 4*13 + 1; d.Len() != want {
		t.Errorf("wanted %v distinct tiles, got %v", want, d.Len())
	}
	if got := len(d.Physical()); got != 106 {
		t.Errorf("wanted 106 physical tiles, got %v", got)
	}
	for i := 1; i < d.Len(); i++ {
		if d.Tiles()[i-1].Code() >= d.Tiles()[i].Code() {
			t.Fatalf("tiles not in code order at %v", i)
		}
	}
	last := d.Len() - 1
	if !d.Tiles()[last].IsWild() || d.Cap(last) != 2 {
		t.Errorf("wanted 2 wildcards at the end, got %v x%v", d.Tiles()[last], d.Cap(last))
	}
}

func TestLookup(t *testing.T) {
	cfg := Default()
	cfg.Colors = []tile.Color{tile.Red, tile.Blue, tile.Black}
	cfg.HighRank = 9
	cfg.WildsPerCopy = 0
	d, err := New(cfg)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	lookupTests := []struct {
		name   string
		want   tile.Tile
		wantOk bool
	}{
		{name: "RED_9", want: tile.New(tile.Red, 9), wantOk: true},
		{name: "RED_10"},
		{name: "ORANGE_1"},
		{name: "JOKER"},
		{name: "garbage"},
	}
	for i, test := range lookupTests {
		got, err := d.Lookup(test.name)
		switch {
		case !test.wantOk:
			if !errors.Is(err, ErrUnknownTile) {
				t.Errorf("Test %v: wanted ErrUnknownTile, got %v", i, err)
			}
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case got != test.want:
			t.Errorf("Test %v: wanted %v, got %v", i, test.want, got)
		}
	}
}

func TestCountsAndExpand(t *testing.T) {
	d, err := New(Default())
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	tiles, err := d.LookupAll([]string{"RED_5", "JOKER", "BLACK_1", "RED_5", "JOKER"})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	v, err := d.Counts(tiles)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	want := []tile.Tile{tile.New(tile.Black, 1), tile.New(tile.Red, 5), tile.New(tile.Red, 5), tile.Joker(), tile.Joker()}
	if diff := cmp.Diff(want, d.Expand(v)); diff != "" {
		t.Errorf("expand mismatch (-want +got):\n%s", diff)
	}
	if _, err := d.Counts(append(tiles, tile.New(tile.Red, 5))); !errors.Is(err, ErrTooManyCopies) {
		t.Errorf("wanted ErrTooManyCopies, got %v", err)
	}
}

func TestPresets(t *testing.T) {
	std, ok := Preset(StandardPreset)
	if !ok {
		t.Fatalf("standard preset missing")
	}
	if diff := cmp.Diff(Default(), std); diff != "" {
		t.Errorf("standard preset differs from Default (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"small", "standard"}, PresetNames()); diff != "" {
		t.Errorf("preset names (-want +got):\n%s", diff)
	}
	if _, ok := Preset("missing"); ok {
		t.Errorf("wanted missing preset to be absent")
	}
}

func TestParsePresets(t *testing.T) {
	good := `{"Tiny": {"colors":["RED","BLUE","BLACK"],"lowRank":1,"highRank":4,"copies":1,"wildsPerCopy":0,"minLen":3,"minOpening":0}}`
	got, err := ParsePresets(strings.NewReader(good))
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, ok := got["tiny"]; !ok {
		t.Errorf("wanted preset names to be lowercased, got %v", got)
	}
	bad := `{"broken": {"colors":[],"lowRank":1,"highRank":4,"copies":1,"minLen":3}}`
	if _, err := ParsePresets(strings.NewReader(bad)); !errors.Is(err, ErrConfig) {
		t.Errorf("wanted ErrConfig, got %v", err)
	}
}

func TestKeyIgnoresColorOrder(t *testing.T) {
	a := Default()
	b := Default()
	b.Colors = []tile.Color{tile.Red, tile.Orange, tile.Blue, tile.Black}
	if a.Key() != b.Key() {
		t.Errorf("wanted equal keys, got %v and %v", a.Key(), b.Key())
	}
	b.MinLen = 4
	if a.Key() == b.Key() {
		t.Errorf("wanted different keys for different minimum lengths")
	}
}
