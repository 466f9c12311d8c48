// This is the main-driver for our compiler.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/skx/cc-subset-amd64/cmd/cc"
)

func main() {

	//
	// Look for flags.
	//
	lex := flag.Bool("lex", false, "Dump the token stream and exit.")
	parse := flag.Bool("parse", false, "Dump the parsed syntax tree and exit.")
	tackify := flag.Bool("tackify", false, "Dump the three-address-code and exit.")
	codegen := flag.Bool("codegen", false, "Dump the legalized assembly IR and exit.")
	run := flag.Bool("run", false, "Execute the compiled binary once it is built.")
	verbose := flag.Bool("verbose", false, "Trace each pipeline pass as it runs.")
	flag.Parse()

	//
	// Ensure we have a single source path as our argument.
	//
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: cc <path-to-c-file> [--lex|--parse|--tackify|--codegen] [--run] [--verbose]\n")
		os.Exit(1)
	}

	driver := cc.New(flag.Args()[0], cc.Flags{
		Lex:     *lex,
		Parse:   *parse,
		Tackify: *tackify,
		Codegen: *codegen,
		Verbose: *verbose,
	})

	exe, err := driver.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}

	if exe == "" {
		// A debug flag short-circuited the pipeline before an
		// executable was produced.
		return
	}

	if *run {
		code, err := cc.Exec(exe)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error launching %s: %s\n", exe, err.Error())
			os.Exit(1)
		}
		os.Exit(code)
	}
}
