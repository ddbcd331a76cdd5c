package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	cbor "github.com/synadia-labs/cborstream/runtime"
)

// CLI defines the cbordiag command-line interface.
//
// We deliberately keep it minimal:
//   - input: CBOR file (stdin when omitted) or an inline hex string
//   - format: diagnostic notation, JSON, a raw event dump, or a bare
//     well-formedness check
//   - depth/length limits forwarded to the stream reader
type CLI struct {
	Input    string `arg:"" optional:"" help:"CBOR file to read (stdin when omitted)"`
	Hex      string `short:"x" help:"Decode an inline hex string instead of a file"`
	Format   string `short:"f" enum:"diag,json,events,none" default:"diag" help:"Output format (none = well-formedness check only)"`
	MaxDepth int    `help:"Maximum container nesting depth" default:"1024"`
	MaxLen   uint64 `help:"Maximum declared container/string length (0 = unlimited)"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cbordiag"),
		kong.Description("Decode CBOR documents into diagnostic notation, JSON, or an event dump."),
	)

	if err := run(&cli); err != nil {
		ctx.FatalIfErrorf(err)
	}
}

func run(cli *CLI) error {
	data, err := readInput(cli)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("empty input")
	}
	if cbor.IsLikelyJSON(data) {
		return errors.New("input looks like JSON text, not CBOR")
	}

	switch cli.Format {
	case "events":
		var events cbor.CollectHandler
		if err := decodeAll(cli, data, &events); err != nil {
			return err
		}
		for _, e := range events.Events {
			fmt.Println(e.String())
		}
		return nil
	case "json":
		bb := cbor.GetByteBuffer()
		defer cbor.PutByteBuffer(bb)
		if err := decodeAll(cli, data, cbor.NewJSONHandler(bb)); err != nil {
			return err
		}
		fmt.Println(bb.String())
		return nil
	case "none":
		return decodeAll(cli, data, cbor.DiscardHandler{})
	default: // diag
		bb := cbor.GetByteBuffer()
		defer cbor.PutByteBuffer(bb)
		if err := decodeAll(cli, data, cbor.NewDiagHandler(bb)); err != nil {
			return err
		}
		fmt.Println(bb.String())
		return nil
	}
}

// decodeAll runs the stream reader over the whole input, treating it as
// a CBOR sequence of one or more items.
func decodeAll(cli *CLI, data []byte, h cbor.ContentHandler) error {
	src := cbor.NewBytesSource(data)
	r := cbor.NewStreamReader(src, h)
	r.SetMaxNestingDepth(cli.MaxDepth)
	r.SetMaxContainerLen(cli.MaxLen)
	for !src.Eof() {
		if err := r.Read(); err != nil {
			return fmt.Errorf("decode failed at byte %d: %w", r.ColumnNumber(), err)
		}
	}
	return nil
}

func readInput(cli *CLI) ([]byte, error) {
	if cli.Hex != "" {
		clean := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\t' {
				return -1
			}
			return r
		}, cli.Hex)
		b, err := hex.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("bad hex input: %w", err)
		}
		return b, nil
	}
	if cli.Input != "" {
		return os.ReadFile(cli.Input)
	}
	bb := cbor.GetByteBuffer()
	defer cbor.PutByteBuffer(bb)
	if _, err := bb.ReadFrom(os.Stdin); err != nil {
		return nil, err
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out, nil
}
