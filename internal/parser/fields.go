package parser

import (
	"strconv"
	"strings"
	"unicode"
)

// splitRecord splits a data line on commas and trims each field. A single
// trailing empty field, left by a trailing comma, is dropped.
func splitRecord(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if n := len(fields); n > 1 && fields[n-1] == "" {
		fields = fields[:n-1]
	}
	return fields
}

// splitList splits an id list on commas and whitespace, dropping empty fields.
func splitList(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// continues reports whether a data record carries on to the next line.
func continues(line string) bool {
	return strings.HasSuffix(strings.TrimSpace(line), ",")
}

func (r *Reader) parseInt(field, what string) (int, error) {
	v, err := strconv.Atoi(field)
	if err != nil {
		return 0, r.engine.Errorf("unable to interpret %q as %s", field, what)
	}
	return v, nil
}

func (r *Reader) parseFloat(field, what string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, r.engine.Errorf("unable to interpret %q as %s", field, what)
	}
	return v, nil
}

func (r *Reader) parseInts(fields []string, what string) ([]int, error) {
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := r.parseInt(f, what)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Reader) parseFloats(fields []string, what string) ([]float64, error) {
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := r.parseFloat(f, what)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
