// Command dfusim runs the DFUSec programming engine against a fully
// simulated board and serves it over a framed TCP byte channel, so host
// tooling can be exercised without hardware.
//
// Frame layout, both directions: type byte, little-endian u32 length,
// payload. Type 1 is an OUT transfer to the device (zero length for a
// ZLP), type 2 is an IN poll whose payload is a u32 maximum transfer
// size; the reply carries the status or data bytes.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/clarenceliu/lpc1857-dfusec/dfu"
	"github.com/clarenceliu/lpc1857-dfusec/protocol"
	"github.com/clarenceliu/lpc1857-dfusec/region"
	"github.com/clarenceliu/lpc1857-dfusec/sim"
)

var cli struct {
	SPISize       uint32 `name:"spi-size" default:"4194304" help:"Simulated serial flash size in bytes."`
	NoSerialFlash bool   `help:"Simulate a board with no serial flash fitted."`
	PartConfig    uint32 `default:"0" help:"Second part-ID word; encodes missing flash bank capacity."`
	Quiet         bool   `short:"q" help:"Suppress engine log output."`

	Serve   serveCmd   `cmd:"" default:"withargs" help:"Serve the simulated device over TCP."`
	Regions regionsCmd `cmd:"" help:"Print the simulated board's region table and exit."`
}

type serveCmd struct {
	Listen string `default:"127.0.0.1:9573" help:"Address to listen on."`
}

type regionsCmd struct{}

// newBoard builds a simulated board from the top-level flags.
func newBoard() *sim.Board {
	board := sim.NewBoard()
	board.Flash.ID2 = cli.PartConfig
	board.SerialFlash = sim.NewSerialFlash(cli.SPISize)
	if cli.NoSerialFlash {
		board.SerialFlash.FailDetect = true
	}
	return board
}

func printRegions(list *region.List) {
	bold := color.New(color.Bold)
	name := color.New(color.FgGreen)

	bold.Printf("%-16s %-12s %-12s %s\n", "NAME", "BASE", "SIZE", "QUANTUM")
	for i := 0; i < list.Len(); i++ {
		r := list.Region(i)
		name.Printf("%-16s", r.Name)
		fmt.Printf(" 0x%08X   0x%08X   %d\n", r.Addr, r.Size, r.BufferSize)
	}
}

func (c *regionsCmd) Run() error {
	sink := dfu.NewDebugSink()
	sink.SetVerbose(false)
	printRegions(newBoard().Regions(protocol.ValidMagic, sink.Printf))
	return nil
}

func (c *serveCmd) Run() error {
	return serve(context.Background(), c.Listen)
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("dfusim"),
		kong.Description("Simulated DFUSec programming device."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "dfusim: %v\n", err)
		os.Exit(1)
	}
}
