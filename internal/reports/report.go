package reports

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/ilhicas/cost-notifier/internal/notifier"
)

// Summary is the printable outcome of a run
type Summary struct {
	Provider    string  `json:"provider"`
	RunID       string  `json:"runId"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Granularity string  `json:"granularity"`
	Metric      string  `json:"metric"`
	Amount      float64 `json:"amount"`
	Unit        string  `json:"unit"`
	Message     string  `json:"message"`
	Delivered   bool    `json:"delivered"`
	Channel     string  `json:"channel,omitempty"`
	Timestamp   string  `json:"ts,omitempty"`
}

// FromResult builds a Summary from a notifier result
func FromResult(res *notifier.Result) *Summary {
	s := &Summary{
		Provider:    res.Provider,
		RunID:       res.RunID,
		StartDate:   res.Query.Window.Start,
		EndDate:     res.Query.Window.End,
		Granularity: res.Query.Granularity.String(),
		Metric:      res.Query.Metric,
		Amount:      res.Cost.Amount,
		Unit:        res.Cost.Unit,
		Message:     res.Message,
	}
	if res.Ack != nil {
		s.Delivered = true
		s.Channel = res.Ack.Channel
		s.Timestamp = res.Ack.Timestamp
	}
	return s
}

// Output writes the summary to w in the given format
func (s *Summary) Output(format string, w io.Writer) error {
	switch format {
	case "json":
		return s.OutputJSON(w)
	case "csv":
		return s.OutputCSV(w)
	case "table":
		return s.OutputTable(w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// OutputJSON writes the summary as indented JSON
func (s *Summary) OutputJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("error encoding report to JSON: %w", err)
	}
	return nil
}

// OutputCSV writes a header row and one data row
func (s *Summary) OutputCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"provider", "start_date", "end_date", "granularity", "metric", "amount", "unit", "delivered"},
		{s.Provider, s.StartDate, s.EndDate, s.Granularity, s.Metric, formatAmount(s.Amount), s.Unit, strconv.FormatBool(s.Delivered)},
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

// OutputTable renders the summary as an ASCII table
func (s *Summary) OutputTable(w io.Writer) error {
	fmt.Fprintf(w, "Report for %s\n", s.Provider)
	fmt.Fprintf(w, "Period: %s to %s\n\n", s.StartDate, s.EndDate)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Granularity", "Cost", "Currency"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.Append([]string{
		s.Metric,
		s.Granularity,
		formatAmount(s.Amount),
		s.Unit,
	})
	table.Render()

	fmt.Fprintf(w, "\nMessage: %s\n", s.Message)
	if s.Delivered {
		fmt.Fprintf(w, "Delivered to %s (ts %s)\n", s.Channel, s.Timestamp)
	}

	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
