package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/strongdm/commentstrip/internal/lang"
)

const defaultStdinLang = "c"

func stripCommand(args []string) {
	var langName string
	var configPath string
	var files []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--lang":
			langName = flagValue(args, &i)
		case "--config":
			configPath = flagValue(args, &i)
		default:
			if strings.HasPrefix(args[i], "--") {
				fmt.Fprintf(os.Stderr, "unknown arg: %s\n", args[i])
				os.Exit(1)
			}
			files = append(files, args[i])
		}
	}

	_, reg := loadRegistry(configPath)
	if len(files) == 0 {
		files = []string{"-"}
	}
	for _, f := range files {
		if err := stripOne(reg, f, langName, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	os.Exit(0)
}

func stripOne(reg *lang.Registry, path, langName string, out io.Writer) error {
	var (
		src []byte
		err error
	)
	if path == "-" {
		src, err = io.ReadAll(os.Stdin)
		if langName == "" {
			langName = defaultStdinLang
		}
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	if langName == "" {
		l, err := reg.ForPath(path)
		if err != nil {
			return fmt.Errorf("%w (use --lang)", err)
		}
		langName = l.Name
	}
	scanner, err := reg.Scanner(langName)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, scanner.Strip(string(src)))
	return err
}
