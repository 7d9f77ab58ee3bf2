// Package output prints fan-out results as a table, JSON, YAML or CSV.
package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/scttfrdmn/awsmp/pkg/dispatch"
)

// Formats accepted by Print.
var Formats = []string{"table", "json", "yaml", "csv"}

// Row is one task outcome.
type Row struct {
	Profile string `json:"profile" yaml:"profile"`
	Region  string `json:"region" yaml:"region"`
	Value   any    `json:"value,omitempty" yaml:"value,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Rows turns a run's results and errors into rows sorted by profile and
// region. The location of a result is read from its "profile" and "region"
// fields, which in-process and child-process values both carry.
func Rows(results []any, errs []error) []Row {
	rows := make([]Row, 0, len(results)+len(errs))

	for _, v := range results {
		row := Row{Value: v}
		if m, ok := toMap(v); ok {
			row.Profile, _ = m["profile"].(string)
			row.Region, _ = m["region"].(string)
		}
		rows = append(rows, row)
	}

	for _, err := range errs {
		row := Row{Error: err.Error()}
		var te *dispatch.TaskError
		if errors.As(err, &te) {
			row.Profile = te.Params.Profile
			row.Region = te.Params.Region
			row.Error = te.Err.Error()
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Profile != rows[j].Profile {
			return rows[i].Profile < rows[j].Profile
		}
		return rows[i].Region < rows[j].Region
	})
	return rows
}

// Printer handles output formatting
type Printer struct {
	writer   io.Writer
	useColor bool
}

// NewPrinter creates a new output printer
func NewPrinter(w io.Writer, useColor bool) *Printer {
	return &Printer{writer: w, useColor: useColor}
}

// Print writes rows in format.
func (p *Printer) Print(format string, rows []Row) error {
	switch format {
	case "table", "":
		return p.PrintTable(rows)
	case "json":
		return p.PrintJSON(rows)
	case "yaml":
		return p.PrintYAML(rows)
	case "csv":
		return p.PrintCSV(rows)
	default:
		return fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// PrintTable outputs rows as a formatted table
func (p *Printer) PrintTable(rows []Row) error {
	table := p.newTable([]string{"Profile", "Region", "Result", "Error"})

	for _, r := range rows {
		row := []string{r.Profile, r.Region, Summarize(r.Value), r.Error}
		if p.useColor && r.Error != "" {
			table.Rich(row, []tablewriter.Colors{{}, {}, {}, {tablewriter.FgRedColor}})
			continue
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

// PrintJSON outputs rows as JSON
func (p *Printer) PrintJSON(rows []Row) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

// PrintYAML outputs rows as YAML
func (p *Printer) PrintYAML(rows []Row) error {
	encoder := yaml.NewEncoder(p.writer)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(rows)
}

// PrintCSV outputs rows as CSV
func (p *Printer) PrintCSV(rows []Row) error {
	writer := csv.NewWriter(p.writer)

	if err := writer.Write([]string{"profile", "region", "result", "error"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{r.Profile, r.Region, Summarize(r.Value), r.Error}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// PrintList writes a single-column list, such as profile or region names.
func (p *Printer) PrintList(format, header string, items []string) error {
	switch format {
	case "table", "":
		table := p.newTable([]string{header})
		for _, item := range items {
			table.Append([]string{item})
		}
		table.Render()
		return nil
	case "json":
		encoder := json.NewEncoder(p.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(items)
	case "yaml":
		encoder := yaml.NewEncoder(p.writer)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(items)
	case "csv":
		writer := csv.NewWriter(p.writer)
		records := [][]string{{strings.ToLower(header)}}
		for _, item := range items {
			records = append(records, []string{item})
		}
		return writer.WriteAll(records)
	default:
		return fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Status prints a one-line status message, green when ok and red otherwise.
func (p *Printer) Status(ok bool, msg string) {
	if !p.useColor {
		fmt.Fprintln(p.writer, msg)
		return
	}
	c := color.New(color.FgGreen, color.Bold)
	if !ok {
		c = color.New(color.FgRed, color.Bold)
	}
	c.Fprintln(p.writer, msg)
}

func (p *Printer) newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(p.writer)
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(headers)

	if p.useColor {
		colors := make([]tablewriter.Colors, len(headers))
		for i := range colors {
			colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor}
		}
		table.SetHeaderColor(colors...)
	}
	return table
}

// Summarize renders a task value on one line. Strings print as-is; structured
// values print as sorted key=value pairs without their profile and region.
func Summarize(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}

	m, ok := toMap(v)
	if !ok {
		return fmt.Sprint(v)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		if k == "profile" || k == "region" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+scalar(m[k]))
	}
	return strings.Join(parts, " ")
}

func scalar(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return ""
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// toMap views v as a JSON object.
func toMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return m, true
}
