// Package traceio reads and writes traces as plain text columns.
//
// Each non-empty line holds one sample per column, separated by blanks,
// tabs or commas. Lines starting with '#' are comments.
package traceio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrRagged reports a line with a different column count than the first.
var ErrRagged = errors.New("traceio: ragged columns")

// ReadColumns reads all columns of r.
func ReadColumns(r io.Reader) ([][]float64, error) {
	var cols [][]float64
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if cols == nil {
			cols = make([][]float64, len(fields))
		}
		if len(fields) != len(cols) {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrRagged, line, len(fields), len(cols))
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("traceio: line %d: %w", line, err)
			}
			cols[i] = append(cols[i], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("traceio: %w", err)
	}
	return cols, nil
}

// ReadColumn reads column col of r.
func ReadColumn(r io.Reader, col int) ([]float64, error) {
	cols, err := ReadColumns(r)
	if err != nil {
		return nil, err
	}
	if col < 0 || col >= len(cols) {
		return nil, fmt.Errorf("traceio: column %d out of range [0, %d)", col, len(cols))
	}
	return cols[col], nil
}

// Write writes the columns to w, tab separated, preceded by a comment
// line of names if any are given.
func Write(w io.Writer, names []string, cols ...[]float64) error {
	bw := bufio.NewWriter(w)
	if len(names) > 0 {
		fmt.Fprintf(bw, "# %s\n", strings.Join(names, "\t"))
	}
	n := 0
	for i, c := range cols {
		if i == 0 {
			n = len(c)
		} else if len(c) != n {
			return fmt.Errorf("%w: column %d has %d samples, want %d", ErrRagged, i, len(c), n)
		}
	}
	var buf []byte
	for row := range n {
		buf = buf[:0]
		for i, c := range cols {
			if i > 0 {
				buf = append(buf, '\t')
			}
			buf = strconv.AppendFloat(buf, c[row], 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
