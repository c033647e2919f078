package chart

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

// Tone marks a highlighted table cell.
type Tone string

const (
	ToneNone     Tone = ""
	ToneOK       Tone = "ok"
	ToneWarning  Tone = "warning"
	ToneCritical Tone = "critical"
)

// Column is a table header.
type Column struct {
	Key    string `json:"key"`
	Header string `json:"header"`
}

// TableCell is one formatted value.
type TableCell struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone,omitempty"`
}

// Table takes its columns from the first row.
type Table struct {
	Columns []Column      `json:"columns"`
	Rows    [][]TableCell `json:"rows"`
}

func renderTable(d analytics.Descriptor) *Table {
	t := &Table{}
	for _, key := range d.Rows[0].Keys() {
		t.Columns = append(t.Columns, Column{Key: key, Header: capitalize(key)})
	}

	for _, row := range d.Rows {
		cells := make([]TableCell, 0, len(row))
		for _, cell := range row {
			text := analytics.Format(cell.Value)
			tc := TableCell{Text: text}
			if cell.Key == "rate" {
				tc.Tone = rateTone(text)
			}
			cells = append(cells, tc)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// rateTone reads the leading number of text, so "12.5%" counts as 12.5.
// Text without one is ok.
func rateTone(text string) Tone {
	v, ok := leadingFloat(text)
	switch {
	case ok && v > 10:
		return ToneCritical
	case ok && v > 5:
		return ToneWarning
	default:
		return ToneOK
	}
}

func leadingFloat(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	end := 0
	for end < len(text) {
		c := text[end]
		if (c >= '0' && c <= '9') || c == '.' || ((c == '-' || c == '+') && end == 0) {
			end++
			continue
		}
		break
	}
	for end > 0 {
		if v, err := strconv.ParseFloat(text[:end], 64); err == nil {
			return v, true
		}
		end--
	}
	return 0, false
}
