//go:build ignore

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/poolhouse/arcticspa/payload"
	"github.com/poolhouse/arcticspa/protocol"
)

// analyze-frames pretty-prints every frame in a captured byte stream.
//
// Captures are hex dumps of the TCP stream in either direction: the output
// of 'xxd -p', a tcpdump payload dump, or the raw_hex fields logged by
// ARCTICSPA_LOG_LEVEL=debug pasted into a file. Whitespace is ignored and
// lines starting with '#' are comments.

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: analyze-frames <hex-capture-file>")
		fmt.Println("Example: analyze-frames captures/live-session.hex")
		os.Exit(1)
	}

	data, err := readHexCapture(os.Args[1])
	if err != nil {
		fmt.Printf("Error reading capture: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Arctic Spa Frame Analyzer ===\n")
	fmt.Printf("Capture: %s (%d bytes)\n\n", os.Args[1], len(data))

	registry := payload.DefaultRegistry()

	frameNum := 0
	offset := 0
	rest := data
	for len(rest) > 0 {
		frame, next, err := protocol.DecodeFrame(rest)
		if err != nil {
			if protocol.IsIncomplete(err) {
				fmt.Printf("--- %d trailing bytes do not form a complete frame ---\n", len(rest))
				fmt.Printf("    %s\n", hexPreview(rest))
			} else {
				fmt.Printf("--- stream corrupt at offset %d: %v ---\n", offset, err)
				fmt.Printf("    %s\n", hexPreview(rest))
			}
			break
		}

		frameNum++
		frameLen := len(rest) - len(next)
		raw := rest[:frameLen]

		fmt.Printf("Frame #%d @ offset %d\n", frameNum, offset)
		fmt.Printf("  Type:     %s\n", frame.Type)
		fmt.Printf("  Sequence: %d\n", frame.Sequence)
		fmt.Printf("  Checksum: %02X%02X%02X%02X (firmware-valid: %v)\n",
			frame.Checksum[0], frame.Checksum[1], frame.Checksum[2], frame.Checksum[3],
			protocol.VerifyChecksum(raw))
		fmt.Printf("  Payload:  %d bytes\n", len(frame.Payload))

		if decode, ok := registry.Lookup(frame.Type); ok && len(frame.Payload) > 0 {
			body, err := decode(frame.Payload)
			if err != nil {
				fmt.Printf("  Decoded:  error: %v\n", err)
			} else {
				fmt.Printf("  Decoded:  %+v\n", body)
			}
		}
		if len(frame.Payload) > 0 {
			fmt.Printf("  Hex:      %s\n", hexPreview(frame.Payload))
		}
		fmt.Println()

		offset += frameLen
		rest = next
	}

	fmt.Printf("========================================\n")
	fmt.Printf("%d frames, %d of %d bytes consumed\n", frameNum, offset, len(data))
	fmt.Printf("========================================\n")
}

// readHexCapture loads a whitespace-insensitive hex dump, skipping comments.
func readHexCapture(filename string) ([]byte, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.WriteString(strings.Map(dropSpace, line))
	}

	data, err := hex.DecodeString(b.String())
	if err != nil {
		return nil, fmt.Errorf("not a hex dump: %w", err)
	}
	return data, nil
}

func dropSpace(r rune) rune {
	if r == ' ' || r == '\t' {
		return -1
	}
	return r
}

func hexPreview(data []byte) string {
	s := hex.EncodeToString(data)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
