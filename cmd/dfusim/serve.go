package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/fatih/color"

	"github.com/clarenceliu/lpc1857-dfusec/dfu"
	"github.com/clarenceliu/lpc1857-dfusec/protocol"
)

// Frame types on the TCP channel.
const (
	frameOut   = 0x01
	frameIn    = 0x02
	frameError = 0xFF
)

// maxFrame bounds a frame payload; the largest legitimate transfer is the
// buffer quantum plus the status header and debug slot.
const maxFrame = protocol.MaxBufferSize + protocol.HeaderSize + protocol.DebugChunkSize

func serve(ctx context.Context, listen string) error {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	color.New(color.FgCyan).Printf("dfusim listening on %s\n", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		color.New(color.FgYellow).Printf("host connected from %s\n", conn.RemoteAddr())

		// One device instance per connection: a disconnect is a detach
		// and the next host gets a freshly powered board.
		serveConn(ctx, conn)
		color.New(color.FgYellow).Printf("host %s disconnected\n", conn.RemoteAddr())
	}
}

// connTransport lets the engine sever the byte channel on reset, execute
// and halt.
type connTransport struct {
	conn net.Conn
}

func (t *connTransport) Disconnect() {
	t.conn.Close()
}

func serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	board := newBoard()
	sink := dfu.NewDebugSink()
	regions := board.Regions(protocol.ValidMagic, sink.Printf)
	printRegions(regions)

	opts := []dfu.Option{
		dfu.WithDebugSink(sink),
		dfu.WithTransport(&connTransport{conn: conn}),
		dfu.WithDeviceID(board.Flash.PartID()),
	}
	if !cli.Quiet {
		opts = append(opts, dfu.WithLogger(stderrLogger{}))
	}
	engine := dfu.New(regions, opts...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go engine.Run(runCtx)

	buf := make([]byte, maxFrame)
	for {
		typ, payload, err := readFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				color.New(color.FgRed).Printf("frame error: %v\n", err)
			}
			engine.Detach()
			return
		}

		switch typ {
		case frameOut:
			if _, err := engine.Write(payload); err != nil {
				writeFrame(conn, frameError, []byte(err.Error()))
				continue
			}
			writeFrame(conn, frameOut, nil)

		case frameIn:
			if len(payload) != 4 {
				writeFrame(conn, frameError, []byte("IN frame needs a u32 poll size"))
				continue
			}
			want := binary.LittleEndian.Uint32(payload)
			if want > uint32(len(buf)) {
				want = uint32(len(buf))
			}
			n, err := engine.Read(buf[:want])
			if err != nil {
				writeFrame(conn, frameError, []byte(err.Error()))
				continue
			}
			writeFrame(conn, frameIn, buf[:n])

		default:
			writeFrame(conn, frameError, []byte(fmt.Sprintf("unknown frame type 0x%02X", typ)))
		}
	}
}

func readFrame(r io.Reader) (byte, []byte, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	size := binary.LittleEndian.Uint32(hdr[1:])
	if size > maxFrame {
		return 0, nil, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return hdr[0], payload, nil
}

func writeFrame(w io.Writer, typ byte, payload []byte) error {
	hdr := [5]byte{typ}
	binary.LittleEndian.PutUint32(hdr[1:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
