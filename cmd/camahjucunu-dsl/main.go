/*
Camahjucunu-dsl loads a BNF grammar file and an instruction file, decodes
the instruction with the requested decoder, and prints the result.

The "table", "rendering" and "board" decoders parse the instruction with
their own built-in grammars; the grammar file is read but not used by them.
For any other decoder name the grammar file is only parsed and verified, and
the instruction is not decoded.

Usage:

	camahjucunu-dsl [flags]

The flags are:

	-c, --config FILE
		Load defaults from the given TOML config file.

	-g, --grammar FILE
		Use the given grammar file. Overrides the config file's dsl.grammar_file.

	-i, --instruction FILE
		Use the given instruction file. Overrides the config file's
		dsl.instruction_file.

	-d, --decoder NAME
		Which decoder to run the instruction through: "table", "rendering",
		or "board". Overrides the config file's dsl.decoder.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/cuwacunu/camahjucunu/internal/bnf"
	"github.com/cuwacunu/camahjucunu/internal/bnf/decode"
	"github.com/cuwacunu/camahjucunu/internal/board"
	"github.com/cuwacunu/camahjucunu/internal/config"
	"github.com/cuwacunu/camahjucunu/internal/version"
)

var (
	flagVersion     = pflag.BoolP("version", "v", false, "Give the current version of camahjucunu-dsl and then exit.")
	flagConfig      = pflag.StringP("config", "c", "", "Load defaults from the given TOML config file.")
	flagGrammar     = pflag.StringP("grammar", "g", "", "Use the given grammar file.")
	flagInstruction = pflag.StringP("instruction", "i", "", "Use the given instruction file.")
	flagDecoder     = pflag.StringP("decoder", "d", "", "Which decoder to run: table, rendering, or board.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("camahjucunu-dsl v%s\n", version.Current)
		return
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	grammarFile := cfg.DSL.GrammarFile
	if pflag.Lookup("grammar").Changed {
		grammarFile = *flagGrammar
	}
	instructionFile := cfg.DSL.InstructionFile
	if pflag.Lookup("instruction").Changed {
		instructionFile = *flagInstruction
	}
	decoderName := cfg.DSL.Decoder
	if pflag.Lookup("decoder").Changed {
		decoderName = *flagDecoder
	}

	if grammarFile == "" || instructionFile == "" {
		fmt.Fprintln(os.Stderr, "both --grammar and --instruction are required")
		os.Exit(1)
	}

	grammarText, err := os.ReadFile(grammarFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read grammar: %v\n", err)
		os.Exit(1)
	}
	instructionText, err := os.ReadFile(instructionFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read instruction: %v\n", err)
		os.Exit(1)
	}

	switch decoderName {
	case "table":
		result, err := runTableDecoder(string(instructionText))
		printResult(result, err)
	case "rendering":
		result, err := runRenderingDecoder(string(instructionText))
		printResult(result, err)
	case "board":
		result, err := runBoardDecoder(string(instructionText))
		printResult(result, err)
	default:
		// the requested decoder does not use the embedded grammar helpers in
		// internal/bnf/decode; fall back to verifying the user-supplied
		// grammar file parses, so the flag combination is still useful for
		// debugging grammar text on its own.
		g, err := bnf.ParseGrammar(string(grammarText))
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse grammar: %v\n", err)
			os.Exit(1)
		}
		if err := bnf.Verify(g); err != nil {
			fmt.Fprintf(os.Stderr, "verify grammar: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("grammar OK; no decoder named", decoderName)
	}
}

func runTableDecoder(text string) (any, error) {
	d, err := decode.NewTableDecoder()
	if err != nil {
		return nil, err
	}
	return d.Decode(text)
}

func runRenderingDecoder(text string) (any, error) {
	d, err := decode.NewRenderingDecoder()
	if err != nil {
		return nil, err
	}
	return d.Decode(text)
}

func runBoardDecoder(text string) (any, error) {
	d, err := board.NewDecoder()
	if err != nil {
		return nil, err
	}
	return d.Decode(text)
}

func printResult(result any, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%+v\n", result)
}
