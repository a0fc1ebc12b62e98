// Command rummisolve runs one solve from the command line.
//
//	rummisolve -rack "RED_1,RED_2,RED_3,JOKER" -board "BLUE_4 RED_4 BLACK_4;ORANGE_7 ORANGE_8 ORANGE_9"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rummikub/internal/deck"
	"github.com/robalobadob/rummikub/internal/game"
	"github.com/robalobadob/rummikub/internal/optimizer"
	"github.com/robalobadob/rummikub/internal/universe"
)

func main() {
	preset := flag.String("preset", deck.StandardPreset, "Deck preset")
	presetsFile := flag.String("presets", "", "Optional JSON file with extra presets")
	rackFlag := flag.String("rack", "", "Comma separated rack tiles, e.g. RED_1,RED_2,JOKER")
	boardFlag := flag.String("board", "", "Board groupings separated by ';', tiles by spaces")
	opening := flag.Bool("opening", true, "Apply the opening-move minimum")
	timeout := flag.Duration("timeout", 10*time.Second, "Wall-clock limit for the search")
	nodes := flag.Int("nodes", 20000, "Branch and bound node limit (0 for none)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := deck.InitPresets(*presetsFile); err != nil {
		fail(err)
	}
	cfg, ok := deck.Preset(*preset)
	if !ok {
		fail(fmt.Errorf("unknown preset %q (have %s)", *preset, strings.Join(deck.PresetNames(), ", ")))
	}
	u, err := universe.Build(cfg)
	if err != nil {
		fail(err)
	}

	g := game.New("cli", u)
	p := g.AddPlayer("cli")
	p.Opening = *opening
	if err := g.SetRack(p.ID, splitList(*rackFlag, ",")); err != nil {
		fail(err)
	}
	var groups [][]string
	for _, grp := range splitList(*boardFlag, ";") {
		groups = append(groups, strings.Fields(grp))
	}
	if err := g.SetBoard(groups); err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	e := optimizer.New(optimizer.Config{NodeLimit: *nodes, TimeLimit: *timeout})
	res, err := g.Solve(ctx, e, p.ID)
	if err != nil {
		fail(err)
	}

	fmt.Printf("candidates: %d\n", u.Len())
	fmt.Printf("outcome:    %v\n", res.Outcome)
	fmt.Printf("value:      %d\n", res.Value)
	fmt.Printf("nodes:      %d\n", res.Nodes)
	if res.Outcome != optimizer.Success {
		return
	}
	moved := make([]string, len(res.MovedTiles))
	for i, t := range res.MovedTiles {
		moved[i] = t.Name()
	}
	fmt.Printf("moved:      %s\n", strings.Join(moved, " "))
	fmt.Println("board:")
	for _, gr := range res.Groupings {
		fmt.Printf("  %-5v %s\n", gr.Kind, strings.Join(gr.Names(), " "))
	}
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
