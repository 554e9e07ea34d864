package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cognicore/censusqa/pkg/census"
)

func main() {
	var (
		dataPath     = flag.String("data", "", "Dataset CSV path (required)")
		synonymsPath = flag.String("synonyms", "", "Synonyms YAML file (optional, built-in table used when omitted)")
		query        = flag.String("query", "", "One-shot query (non-interactive mode)")
	)
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("--data required")
	}

	engine, err := census.Load(*dataPath, *synonymsPath)
	if err != nil {
		log.Fatal(err)
	}

	// One-shot query mode
	if *query != "" {
		executeQuery(engine, *query)
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  Census Chat CLI")
	fmt.Println("  Ask about states and population figures")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type your question (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		executeQuery(engine, q)
	}

	fmt.Println("\nGoodbye!")
}

func executeQuery(engine *census.Engine, query string) {
	resolved := engine.Resolve(query)

	ans, err := engine.Ask(query)
	if err != nil {
		fmt.Println(err)
		fmt.Println()
		return
	}

	fmt.Println(ans.Sentence)
	fmt.Printf("  region:    %s\n", orNone(resolved.Region))
	fmt.Printf("  attribute: %s\n", orNone(resolved.Attribute))
	fmt.Println()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
