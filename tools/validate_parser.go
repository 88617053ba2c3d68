//go:build ignore

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poolhouse/arcticspa/payload"
	"github.com/poolhouse/arcticspa/protocol"
)

// validate_parser replays captured controller traffic through the frame
// decoder and payload parsers and reports how much of it parses cleanly.
//
// Captures are hex dump files (see analyze-frames for the format); a
// directory argument processes every *.hex file in it.

// Statistics tracks parsing results
type Statistics struct {
	TotalFiles     int
	TotalFrames    int
	ParseSuccess   int
	ParseFailure   int
	ChecksumValid  int
	NoDecoder      int
	MessageTypes   map[protocol.MessageType]int
	PayloadLengths map[int]int
	FailedFrames   []FailedFrame
}

// FailedFrame stores information about parsing failures
type FailedFrame struct {
	File     string
	Offset   int
	FrameNum int
	Hex      string
	Error    string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate_parser <directory-or-file>")
		fmt.Println("Example: validate_parser captures/")
		fmt.Println("         validate_parser captures/live-session.hex")
		os.Exit(1)
	}

	path := os.Args[1]

	stats := Statistics{
		MessageTypes:   make(map[protocol.MessageType]int),
		PayloadLengths: make(map[int]int),
		FailedFrames:   []FailedFrame{},
	}

	// Check if path is directory or file
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		pattern := filepath.Join(path, "*.hex")
		files, err = filepath.Glob(pattern)
		if err != nil {
			fmt.Printf("Error finding capture files: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Printf("No .hex capture files found in %s\n", path)
			os.Exit(1)
		}
	} else {
		files = []string{path}
	}

	fmt.Printf("=== Arctic Spa Parser Validator ===\n")
	fmt.Printf("Files to process: %d\n\n", len(files))

	registry := payload.DefaultRegistry()
	for _, file := range files {
		processFile(file, registry, &stats)
	}

	printStatistics(&stats)
}

func processFile(filename string, registry *protocol.Registry, stats *Statistics) {
	stats.TotalFiles++

	data, err := readHexCapture(filename)
	if err != nil {
		fmt.Printf("Error reading file %s: %v\n", filename, err)
		return
	}

	frameNum := 0
	offset := 0
	rest := data
	for len(rest) > 0 {
		frame, next, err := protocol.DecodeFrame(rest)
		if err != nil {
			stats.TotalFrames++
			stats.ParseFailure++
			stats.FailedFrames = append(stats.FailedFrames, FailedFrame{
				File:     filename,
				Offset:   offset,
				FrameNum: frameNum + 1,
				Hex:      hexPreview(rest),
				Error:    err.Error(),
			})
			break
		}

		frameNum++
		stats.TotalFrames++
		frameLen := len(rest) - len(next)
		stats.PayloadLengths[len(frame.Payload)]++

		if protocol.VerifyChecksum(rest[:frameLen]) {
			stats.ChecksumValid++
		}

		decode, ok := registry.Lookup(frame.Type)
		if !ok {
			// Heartbeats and unmapped types carry no parseable payload
			stats.NoDecoder++
			stats.ParseSuccess++
			stats.MessageTypes[frame.Type]++
			offset += frameLen
			rest = next
			continue
		}

		if _, err := decode(frame.Payload); err != nil {
			stats.ParseFailure++
			stats.FailedFrames = append(stats.FailedFrames, FailedFrame{
				File:     filename,
				Offset:   offset,
				FrameNum: frameNum,
				Hex:      hexPreview(frame.Payload),
				Error:    fmt.Sprintf("payload parse error: %v", err),
			})
		} else {
			stats.ParseSuccess++
			stats.MessageTypes[frame.Type]++
		}

		offset += frameLen
		rest = next
	}
}

func printStatistics(stats *Statistics) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("VALIDATION RESULTS\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Files Processed:    %d\n", stats.TotalFiles)
	fmt.Printf("Total Frames:       %d\n", stats.TotalFrames)
	if stats.TotalFrames > 0 {
		fmt.Printf("Parse Success:      %d (%.2f%%)\n", stats.ParseSuccess,
			float64(stats.ParseSuccess)/float64(stats.TotalFrames)*100)
		fmt.Printf("Parse Failure:      %d (%.2f%%)\n", stats.ParseFailure,
			float64(stats.ParseFailure)/float64(stats.TotalFrames)*100)
		fmt.Printf("Checksum Valid:     %d (%.2f%%)\n", stats.ChecksumValid,
			float64(stats.ChecksumValid)/float64(stats.TotalFrames)*100)
		fmt.Printf("No Decoder:         %d\n", stats.NoDecoder)
	}

	fmt.Printf("\n----------------------------------------\n")
	fmt.Printf("MESSAGE TYPE DISTRIBUTION\n")
	fmt.Printf("----------------------------------------\n")
	for msgType, count := range stats.MessageTypes {
		percentage := float64(count) / float64(stats.ParseSuccess) * 100
		fmt.Printf("Type %d (%s): %d (%.2f%%)\n", uint16(msgType), msgType, count, percentage)
	}

	fmt.Printf("\n----------------------------------------\n")
	fmt.Printf("PAYLOAD LENGTH DISTRIBUTION\n")
	fmt.Printf("----------------------------------------\n")
	for length, count := range stats.PayloadLengths {
		percentage := float64(count) / float64(stats.TotalFrames) * 100
		fmt.Printf("%d bytes: %d frames (%.2f%%)\n", length, count, percentage)
	}

	if len(stats.FailedFrames) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("PARSE FAILURES (%d total)\n", len(stats.FailedFrames))
		fmt.Printf("----------------------------------------\n")

		// Show first 10 failures
		maxShow := 10
		if len(stats.FailedFrames) > maxShow {
			fmt.Printf("(Showing first %d of %d failures)\n\n", maxShow, len(stats.FailedFrames))
		}

		for i, failed := range stats.FailedFrames {
			if i >= maxShow {
				break
			}
			fmt.Printf("\nFailure #%d:\n", i+1)
			fmt.Printf("  File: %s (offset %d, frame #%d)\n", failed.File, failed.Offset, failed.FrameNum)
			fmt.Printf("  Error: %s\n", failed.Error)
			fmt.Printf("  Bytes: %s\n", failed.Hex)
		}
	}

	fmt.Printf("\n========================================\n")
	if stats.ParseFailure == 0 {
		fmt.Printf("✅ SUCCESS: All frames parsed successfully!\n")
	} else {
		fmt.Printf("⚠️  ISSUES FOUND: %d frames failed to parse\n", stats.ParseFailure)
	}
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
