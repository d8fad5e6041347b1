package learningcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"loopplanner/internal/app/ports"
	"loopplanner/internal/domain/familiarity"
)

var ErrEmptyInput = errors.New("learning csv is empty")

var header = []string{"actionIdentifier", "completions", "timeCompleted"}

type Parsed struct {
	State familiarity.State
	// Skipped holds 1-based line numbers that could not be read as a row.
	Skipped []int
}

// Parse reads actionIdentifier,completions,timeCompleted rows. The header is
// optional. A row whose value columns are both unreadable counts as zero
// completions.
func Parse(r io.Reader) (Parsed, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("read learning csv: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return Parsed{}, ErrEmptyInput
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	out := Parsed{State: familiarity.State{}}
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				out.Skipped = append(out.Skipped, perr.StartLine)
				continue
			}
			return Parsed{}, fmt.Errorf("parse learning csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if first {
			first = false
			if strings.Contains(strings.ToLower(strings.Join(record, ",")), "actionidentifier") {
				continue
			}
		}
		if len(record) < 3 {
			out.Skipped = append(out.Skipped, line)
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			out.Skipped = append(out.Skipped, line)
			continue
		}
		out.State[name] = parseRow(record[1], record[2])
	}
	return out, nil
}

func parseRow(completions, timeCompleted string) familiarity.Record {
	if n, ok := leadingInt(completions); ok {
		return familiarity.Completions(n)
	}
	if n, ok := leadingInt(timeCompleted); ok {
		return familiarity.TimeCompleted(float64(n))
	}
	return familiarity.Completions(0)
}

// leadingInt reads an optionally signed run of digits at the start of s,
// ignoring whatever follows ("12s" reads as 12).
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Export writes state with a header row, one action per line in name order.
func Export(w io.Writer, state familiarity.State) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write learning csv header: %w", err)
	}
	for _, name := range state.Names() {
		rec := state[name]
		row := []string{name, "", ""}
		value := strconv.FormatFloat(rec.Value, 'f', -1, 64)
		switch rec.Type {
		case familiarity.KindTimeCompleted:
			row[2] = value
		default:
			row[1] = value
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write learning csv row %q: %w", name, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func ExportString(state familiarity.State) (string, error) {
	var b strings.Builder
	if err := Export(&b, state); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Codec exposes Parse and Export as a ports.LearningCodec.
type Codec struct{}

func (Codec) Decode(r io.Reader) (ports.DecodedLearning, error) {
	parsed, err := Parse(r)
	if err != nil {
		return ports.DecodedLearning{}, err
	}
	return ports.DecodedLearning{State: parsed.State, Skipped: parsed.Skipped}, nil
}

func (Codec) Encode(state familiarity.State) (string, error) {
	return ExportString(state)
}

var _ ports.LearningCodec = Codec{}
