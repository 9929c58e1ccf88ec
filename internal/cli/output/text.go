package output

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yndnr/remotebean-go/internal/scenario"
)

// TextFormatter renders data for people.
//
// Reports become a one-line-per-scenario summary, tables are aligned,
// and other structs or maps become FIELD/VALUE tables.
type TextFormatter struct {
	NoHeaders bool
}

// Format formats data as text.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	switch d := data.(type) {
	case nil:
		return nil
	case *scenario.Report:
		return reportTable(d).RenderWithOptions(w, f.NoHeaders)
	case *Table:
		return d.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return d.RenderWithOptions(w, f.NoHeaders)
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, d.String())
		return err
	}

	table, err := toTable(data)
	if err != nil {
		_, err = fmt.Fprintf(w, "%v\n", data)
		return err
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

// WriteStep writes one trace line for a scenario step.
func WriteStep(w io.Writer, name string, step scenario.Step) error {
	_, err := fmt.Fprintf(w, "[%s] %s\n", name, step)
	return err
}

func reportTable(r *scenario.Report) *Table {
	t := &Table{Headers: []string{"SCENARIO", "RESULT", "STEPS", "DURATION", "KEY", "SESSION"}}
	for _, res := range r.Results {
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		session := res.SessionID
		if session == "" {
			session = "-"
		}
		t.AddRow(res.Name, status, fmt.Sprintf("%d", len(res.Steps)),
			res.Duration.Round(time.Millisecond).String(), res.Key, session)
	}
	return t
}

func toTable(data any) (*Table, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return &Table{}, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		return mapToTable(v), nil
	case reflect.Struct:
		return structToTable(v), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", v.Kind())
	}
}

func mapToTable(v reflect.Value) *Table {
	t := &Table{Headers: []string{"KEY", "VALUE"}}
	iter := v.MapRange()
	for iter.Next() {
		t.AddRow(formatValue(iter.Key()), formatValue(iter.Value()))
	}
	return t
}

func structToTable(v reflect.Value) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("yaml"); tag != "" {
			if n, _, _ := strings.Cut(tag, ","); n == "-" {
				continue
			} else if n != "" {
				name = n
			}
		}
		t.AddRow(name, formatValue(v.Field(i)))
	}
	return t
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.String:
		if v.String() == "" {
			return "-"
		}
		return v.String()
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table, optionally without headers.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}
