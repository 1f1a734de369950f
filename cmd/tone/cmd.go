package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonefmt/tone"
	"github.com/tonefmt/tone/tokens"
)

type rootFlags struct {
	output       string
	encodeFlag   bool
	decodeFlag   bool
	delimiter    string
	indent       int
	lengthMarker bool
	strict       bool
	stats        bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:     "tone <input-file>",
		Short:   "Convert between JSON and TONE formats",
		Version: "1.0.0",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file path (default: stdout)")
	f.BoolVarP(&flags.encodeFlag, "encode", "e", false, "encode JSON to TONE (auto-detected by default)")
	f.BoolVarP(&flags.decodeFlag, "decode", "d", false, "decode TONE to JSON (auto-detected by default)")
	f.StringVar(&flags.delimiter, "delimiter", "comma", "delimiter for arrays: comma, tab, or pipe")
	f.IntVar(&flags.indent, "indent", 2, "indentation size")
	f.BoolVar(&flags.lengthMarker, "length-marker", false, "use a length marker (#) for arrays")
	f.BoolVar(&flags.strict, "strict", true, "enable strict mode for decoding")
	f.BoolVar(&flags.stats, "stats", false, "print a token-count comparison to stderr")

	return cmd
}

func run(flags *rootFlags, inputFile string) error {
	if flags.indent < 0 {
		return fmt.Errorf("indent must be non-negative")
	}
	delim, ok := tone.DelimiterFromName(flags.delimiter)
	if !ok {
		return fmt.Errorf("unknown delimiter %q: must be comma, tab, or pipe", flags.delimiter)
	}

	mode := detectMode(inputFile, flags.encodeFlag, flags.decodeFlag)

	content, err := os.ReadFile(inputFile)
	if err != nil {
		return err
	}

	var output string
	switch mode {
	case "encode":
		output, err = encodeToTone(string(content), delim, flags.indent, flags.lengthMarker)
	default:
		output, err = decodeToJSON(string(content), flags.indent, flags.strict)
	}
	if err != nil {
		return err
	}

	if flags.stats {
		reportStats(mode, string(content), output)
	}

	if flags.output != "" {
		if err := os.WriteFile(flags.output, []byte(output), 0o644); err != nil {
			return err
		}
		if mode == "decode" {
			fmt.Printf("Decoded %s -> %s\n", inputFile, flags.output)
		} else {
			fmt.Printf("Encoded %s -> %s\n", inputFile, flags.output)
		}
		return nil
	}

	fmt.Println(output)
	return nil
}

// detectMode mirrors the reference CLI's detect_mode: explicit flags win,
// then file extension (.json -> encode, .tone/.toon -> decode), defaulting
// to encode for anything else.
func detectMode(inputFile string, encodeFlag, decodeFlag bool) string {
	if encodeFlag {
		return "encode"
	}
	if decodeFlag {
		return "decode"
	}
	switch strings.ToLower(filepath.Ext(inputFile)) {
	case ".json":
		return "encode"
	case ".tone", ".toon":
		return "decode"
	default:
		return "encode"
	}
}

func encodeToTone(jsonContent string, delim tone.Delimiter, indent int, lengthMarker bool) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonContent), &data); err != nil {
		return "", fmt.Errorf("failed to parse JSON: %w", err)
	}
	return tone.EncodeWithOptions(data, &tone.EncodeOptions{
		Delimiter:    delim,
		Indent:       indent,
		LengthMarker: lengthMarker,
	})
}

func decodeToJSON(toneContent string, indent int, strict bool) (string, error) {
	data, err := tone.DecodeWithOptions(toneContent, &tone.DecodeOptions{
		Strict: strict,
		Indent: indent,
	})
	if err != nil {
		return "", fmt.Errorf("failed to decode TONE: %w", err)
	}
	b, err := json.MarshalIndent(data, "", strings.Repeat(" ", indent))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func reportStats(mode, input, output string) {
	var jsonText, toneText string
	if mode == "encode" {
		jsonText, toneText = input, output
	} else {
		jsonText, toneText = output, input
	}
	jsonTokens, toneTokens, reduction := tokens.CompareEstimate(jsonText, toneText)
	fmt.Fprintf(os.Stderr, "tokens: json=%d tone=%d reduction=%.1f%%\n", jsonTokens, toneTokens, reduction)
}
