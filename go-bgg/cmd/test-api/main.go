// Test program to verify BGG API connectivity and XML mapping.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
)

const usage = "Usage: [BGG_TOKEN=your-token] go run . [-json] <search-query>"

func main() {
	asJSON := flag.Bool("json", false, "print the parsed game details as JSON")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("Error: search query is required")
		fmt.Println(usage)
		os.Exit(1)
	}
	query := strings.Join(flag.Args(), " ")

	client, err := bgg.NewClient(bgg.Config{Token: os.Getenv("BGG_TOKEN")})
	if err != nil {
		fmt.Printf("Error creating client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Println("=== Testing Search API ===")
	fmt.Printf("Searching for %q...\n", query)

	raw, err := client.SearchGames(ctx, query, "boardgame,boardgameexpansion", false)
	if err != nil {
		fmt.Printf("Error searching games: %v (code %s)\n", err, bgg.CodeOf(err))
		os.Exit(1)
	}
	results := bgg.ParseSearchResults(raw)

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, game := range results {
		if i >= 10 {
			fmt.Printf("... and %d more results\n", len(results)-10)
			break
		}
		fmt.Printf("  [%s] %s (%d) - Type: %s\n", game.ID, game.Name, game.YearPublished, game.Type)
	}
	if len(results) == 0 {
		fmt.Println("\n=== Test Complete ===")
		return
	}

	id := results[0].ID
	fmt.Println("\n=== Testing Thing API ===")
	fmt.Printf("Getting details for game ID %s...\n", id)

	raw, err = client.GetGameDetails(ctx, id)
	if err != nil {
		fmt.Printf("Error getting game: %v (code %s)\n", err, bgg.CodeOf(err))
		os.Exit(1)
	}
	games, err := bgg.DecodeItems(raw)
	if err != nil || len(games) == 0 {
		fmt.Printf("Error parsing game: %v\n", err)
		os.Exit(1)
	}
	game := games[0]

	if *asJSON {
		out, err := bgg.ToJSON(game)
		if err != nil {
			fmt.Printf("Error encoding game: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
		fmt.Printf("\nRequests used: %d, hourly budget left: %d\n", client.RequestCount(), client.RemainingBudget())
		return
	}

	fmt.Printf("Game Details:\n")
	fmt.Printf("  Name:        %s\n", game.Name)
	fmt.Printf("  Year:        %d\n", game.YearPublished)
	fmt.Printf("  Players:     %d-%d\n", game.MinPlayers, game.MaxPlayers)
	fmt.Printf("  Time:        %d-%d min\n", game.MinPlayTime, game.MaxPlayTime)
	fmt.Printf("  Rating:      %.2f (%d votes)\n", game.Rating, game.UsersRated)
	fmt.Printf("  Rank:        #%d\n", game.Rank)
	fmt.Printf("  Weight:      %.2f/5\n", game.Weight)
	fmt.Printf("  Alternates:  %d\n", len(game.AlternateNames))
	fmt.Printf("  Versions:    %d\n", len(game.Versions))
	for i, v := range game.Versions {
		if i >= 5 {
			break
		}
		fmt.Printf("    - %s [%s]\n", v.Name, strings.Join(v.Languages, ", "))
	}

	fmt.Printf("\nRequests used: %d, hourly budget left: %d\n", client.RequestCount(), client.RemainingBudget())
	fmt.Println("\n=== Test Complete ===")
}
