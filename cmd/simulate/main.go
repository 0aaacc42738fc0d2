// Package main provides a battle simulator for balancing game content: it
// generates two enemies and plays them against each other with the enemy
// policy on both sides.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/toseph-here/kope-quest/internal/game/battle"
	"github.com/toseph-here/kope-quest/internal/game/element"
	"github.com/toseph-here/kope-quest/internal/game/npc"
	"github.com/toseph-here/kope-quest/internal/game/rng"
	"github.com/toseph-here/kope-quest/internal/gamedata"
)

func main() {
	start := time.Now()

	contentDir := flag.String("content", "content", "path to game content directory")
	firstElem := flag.String("first", "Fire", "element of the first combatant")
	firstLevel := flag.Int("first-level", 5, "level of the first combatant")
	secondElem := flag.String("second", "Water", "element of the second combatant")
	secondLevel := flag.Int("second-level", 5, "level of the second combatant")
	rounds := flag.Int("rounds", 1, "number of battles to simulate")
	verbose := flag.Bool("verbose", false, "print the action log of each battle")
	flag.Parse()

	data, err := gamedata.Load(*contentDir)
	if err != nil {
		log.Fatalf("loading game content: %v", err)
	}

	e1, err := element.Parse(*firstElem)
	if err != nil {
		log.Fatalf("first element: %v", err)
	}
	e2, err := element.Parse(*secondElem)
	if err != nil {
		log.Fatalf("second element: %v", err)
	}

	src := rng.NewCryptoSource()
	scale := data.Scaling()

	var firstWins, secondWins, draws int
	for i := 0; i < *rounds; i++ {
		first := npc.Generate(fmt.Sprintf("%s (L%d)", e1, *firstLevel), *firstLevel, e1, scale, src)
		second := npc.Generate(fmt.Sprintf("%s (L%d)", e2, *secondLevel), *secondLevel, e2, scale, src)

		result, err := battle.Simulate(first, second, data.Table(), src)
		if err != nil {
			log.Fatalf("simulating battle: %v", err)
		}

		switch {
		case result.Draw:
			draws++
		case result.WinnerID == first.ID():
			firstWins++
		default:
			secondWins++
		}

		if *verbose {
			fmt.Fprintf(os.Stdout, "--- battle %d (%d turns) ---\n", i+1, result.Turns)
			for _, line := range result.Log {
				fmt.Fprintln(os.Stdout, line)
			}
		}
	}

	fmt.Fprintf(os.Stdout, "%s L%d vs %s L%d over %d battles: %d / %d / %d (first/second/draw) [%s]\n",
		e1, *firstLevel, e2, *secondLevel, *rounds,
		firstWins, secondWins, draws, time.Since(start))
}
