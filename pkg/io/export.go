package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/scale"
)

// WriteJSON encodes m as a JSON curve table. The output can be read back
// with [ReadJSON].
func WriteJSON(m *curve.Model, w io.Writer) error {
	out := table{Kind: string(m.Kind())}
	for _, s := range m.Strata() {
		st := stratum{Label: s.Label, Outcome: s.Outcome, Records: make([]record, len(s.Records))}
		for i, r := range s.Records {
			st.Records[i] = record{
				Time: r.Time, Estimate: r.Estimate, ConfLow: r.Lower, ConfHigh: r.Upper,
				NRisk: r.NRisk, NEvent: r.NEvent, NCensor: r.NCensor,
			}
		}
		out.Strata = append(out.Strata, st)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteCSV encodes m as a tidy CSV table.
func WriteCSV(m *curve.Model, w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"time", "n.risk", "n.event", "n.censor", "estimate", "conf.low", "conf.high", "strata"}
	if m.Outcomes() != nil {
		header = append(header, "outcome")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range m.Strata() {
		for _, r := range s.Records {
			row := []string{
				scale.FormatNumber(r.Time), strconv.Itoa(r.NRisk), strconv.Itoa(r.NEvent), strconv.Itoa(r.NCensor),
				scale.FormatNumber(r.Estimate), scale.FormatNumber(r.Lower), scale.FormatNumber(r.Upper), s.Label,
			}
			if len(header) == 9 {
				row = append(row, s.Outcome)
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export writes m to path as JSON.
func Export(m *curve.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}
