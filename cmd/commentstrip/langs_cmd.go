package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/strongdm/commentstrip/internal/lang"
)

func langsCommand(args []string) {
	var configPath string
	var jsonOutput bool
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			configPath = flagValue(args, &i)
		case "--json":
			jsonOutput = true
		default:
			fmt.Fprintf(os.Stderr, "unknown arg: %s\n", args[i])
			os.Exit(1)
		}
	}

	_, reg := loadRegistry(configPath)
	langs := make([]lang.Language, 0)
	for _, name := range reg.Names() {
		l, err := reg.Lookup(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		langs = append(langs, l)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(langs); err != nil {
			fmt.Fprintln(os.Stderr, "json encode:", err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	for _, l := range langs {
		blocks := make([]string, 0, len(l.Markers.MultiLine))
		for _, p := range l.Markers.MultiLine {
			blocks = append(blocks, p.Start+" "+p.End)
		}
		fmt.Printf("%s\n", l.Name)
		fmt.Printf("  extensions:     %s\n", strings.Join(l.Extensions, " "))
		fmt.Printf("  line comments:  %s\n", strings.Join(l.Markers.SingleLine, " "))
		fmt.Printf("  block comments: %s\n", strings.Join(blocks, ", "))
		fmt.Printf("  quotes:         %s\n", strings.Join(l.Markers.Quotes, " "))
	}
	os.Exit(0)
}
