package projectfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aristath/miniplan/internal/scheduler"
)

// csvColumns is the header written by encodeCSV. Headers are matched case
// insensitively on read; only id, name and duration are required.
var csvColumns = []string{
	"id", "name", "duration", "predecessors", "resource", "description",
	"es", "ef", "ls", "lf", "total_float", "free_float", "is_critical",
}

func decodeCSV(r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "name", "duration"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	var recs []record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		number := func(name string) (int, error) {
			s := field(name)
			if s == "" {
				return 0, nil
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return 0, fmt.Errorf("line %d: %s must be an integer, got %q", line, name, s)
			}
			return n, nil
		}

		rec := record{
			ID:           field("id"),
			Name:         field("name"),
			Predecessors: scheduler.ParsePredecessors(field("predecessors")),
			Resource:     field("resource"),
			Description:  field("description"),
		}
		if field("duration") == "" {
			return nil, fmt.Errorf("line %d: duration is required", line)
		}
		ints := []struct {
			name string
			dst  *int
		}{
			{"duration", &rec.Duration},
			{"es", &rec.ES}, {"ef", &rec.EF}, {"ls", &rec.LS}, {"lf", &rec.LF},
			{"total_float", &rec.TotalFloat}, {"free_float", &rec.FreeFloat},
		}
		for _, c := range ints {
			if *c.dst, err = number(c.name); err != nil {
				return nil, err
			}
		}
		if s := field("is_critical"); s != "" {
			if rec.IsCritical, err = strconv.ParseBool(s); err != nil {
				return nil, fmt.Errorf("line %d: is_critical must be a boolean, got %q", line, s)
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func encodeCSV(w io.Writer, recs []record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}

	for _, r := range recs {
		row := []string{
			r.ID,
			r.Name,
			strconv.Itoa(r.Duration),
			scheduler.FormatPredecessors(r.Predecessors),
			r.Resource,
			r.Description,
			strconv.Itoa(r.ES),
			strconv.Itoa(r.EF),
			strconv.Itoa(r.LS),
			strconv.Itoa(r.LF),
			strconv.Itoa(r.TotalFloat),
			strconv.Itoa(r.FreeFloat),
			strconv.FormatBool(r.IsCritical),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
