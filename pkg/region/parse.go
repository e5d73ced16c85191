package region

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MalformedLineError describes a region file line that was skipped.
type MalformedLineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("region: line %d: %s", e.Line, e.Reason)
}

// Parse reads one region per line in the form
//
//	x1 y1 x2 y2 [score classIndex]
//
// Blank lines and lines starting with '#' are ignored. Lines that cannot be
// parsed, have a non-positive size or an unknown class index are returned
// as MalformedLineErrors and do not stop parsing. The error result is only
// set when reading fails.
func Parse(r io.Reader) ([]Box, []*MalformedLineError, error) {
	var (
		boxes     []Box
		malformed []*MalformedLineError
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		box, reason := parseLine(text)
		if reason != "" {
			malformed = append(malformed, &MalformedLineError{Line: lineNo, Text: text, Reason: reason})
			continue
		}
		boxes = append(boxes, box)
	}
	if err := scanner.Err(); err != nil {
		return boxes, malformed, fmt.Errorf("region: read: %w", err)
	}

	return boxes, malformed, nil
}

func parseLine(text string) (Box, string) {
	fields := strings.Fields(text)
	if len(fields) != 4 && len(fields) != 6 {
		return Box{}, fmt.Sprintf("expected 4 or 6 fields, got %d", len(fields))
	}

	var coords [4]int
	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return Box{}, fmt.Sprintf("invalid coordinate %q", fields[i])
		}
		coords[i] = v
	}
	box := Box{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}
	if !box.Valid() {
		return Box{}, fmt.Sprintf("non-positive size %dx%d", box.Width(), box.Height())
	}

	if len(fields) == 6 {
		score, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return Box{}, fmt.Sprintf("invalid score %q", fields[4])
		}
		class, err := strconv.Atoi(fields[5])
		if err != nil {
			return Box{}, fmt.Sprintf("invalid class index %q", fields[5])
		}
		label, ok := LabelOf(class)
		if !ok {
			return Box{}, fmt.Sprintf("class index %d out of range", class)
		}
		box.Score = score
		box.Label = label
	}

	return box, ""
}
