package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
)

type table struct {
	Kind   string    `json:"kind,omitempty"`
	Error  string    `json:"error,omitempty"`
	Strata []stratum `json:"strata,omitempty"`
}

type stratum struct {
	Label   string   `json:"label"`
	Outcome string   `json:"outcome,omitempty"`
	Records []record `json:"records"`
}

type record struct {
	Time     float64 `json:"time"`
	Estimate float64 `json:"estimate"`
	ConfLow  float64 `json:"conf_low"`
	ConfHigh float64 `json:"conf_high"`
	NRisk    int     `json:"n_risk"`
	NEvent   int     `json:"n_event,omitempty"`
	NCensor  int     `json:"n_censor,omitempty"`
}

// ReadJSON decodes a JSON curve table from r.
//
// A table carrying an "error" field yields an ESTIMATION error with that
// message; malformed JSON yields INVALID_FORMAT; a well-formed table that
// violates model invariants yields CONFIGURATION. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*curve.Model, error) {
	var data table
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode curve table")
	}
	if data.Error != "" {
		return nil, errors.New(errors.ErrCodeEstimation, "%s", data.Error)
	}

	strata := make([]curve.Stratum, len(data.Strata))
	for i, s := range data.Strata {
		cs := curve.Stratum{Label: s.Label, Outcome: s.Outcome, Records: make([]curve.Record, len(s.Records))}
		for j, r := range s.Records {
			cs.Records[j] = curve.Record{
				Time: r.Time, Estimate: r.Estimate, Lower: r.ConfLow, Upper: r.ConfHigh,
				NRisk: r.NRisk, NEvent: r.NEvent, NCensor: r.NCensor,
			}
		}
		strata[i] = cs
	}
	return curve.New(curve.Kind(data.Kind), strata...)
}

// csvColumns maps accepted header names to record fields.
var csvColumns = map[string]string{
	"time": curve.KeyTime, "estimate": curve.KeyEstimate, "surv": curve.KeyEstimate,
	"conf.low": curve.KeyConfLow, "lower": curve.KeyConfLow,
	"conf.high": curve.KeyConfHigh, "upper": curve.KeyConfHigh,
	"n.risk": curve.KeyNRisk, "n.event": curve.KeyNEvent, "n.censor": curve.KeyNCensor,
	"strata": "strata", "outcome": "outcome", "state": "outcome",
}

// ReadCSV decodes a tidy CSV curve table of the given kind from r.
func ReadCSV(r io.Reader, kind curve.Kind) (*curve.Model, error) {
	return readDelimited(r, kind, ',')
}

func readDelimited(r io.Reader, kind curve.Kind, comma rune) (*curve.Model, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv header")
	}
	col := make(map[string]int)
	for i, h := range header {
		if f, ok := csvColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			col[f] = i
		}
	}
	for _, need := range []string{curve.KeyTime, curve.KeyEstimate, curve.KeyNRisk} {
		if _, ok := col[need]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "csv is missing the %q column", need)
		}
	}

	var order []string
	byID := make(map[string]*curve.Stratum)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv line %d", line)
		}
		rec, err := parseRow(row, col)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "csv line %d", line)
		}
		s := curve.Stratum{Label: field(row, col, "strata"), Outcome: field(row, col, "outcome")}
		id := s.ID()
		if _, ok := byID[id]; !ok {
			byID[id] = &s
			order = append(order, id)
		}
		byID[id].Records = append(byID[id].Records, rec)
	}

	strata := make([]curve.Stratum, len(order))
	for i, id := range order {
		strata[i] = *byID[id]
	}
	return curve.New(kind, strata...)
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRow(row []string, col map[string]int) (curve.Record, error) {
	num := func(key string) (float64, error) {
		s := field(row, col, key)
		if s == "" || strings.EqualFold(s, "NA") {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", key, err)
		}
		return v, nil
	}
	var rec curve.Record
	var vals [7]float64
	keys := []string{curve.KeyTime, curve.KeyEstimate, curve.KeyConfLow, curve.KeyConfHigh, curve.KeyNRisk, curve.KeyNEvent, curve.KeyNCensor}
	for i, k := range keys {
		v, err := num(k)
		if err != nil {
			return rec, err
		}
		vals[i] = v
	}
	rec = curve.Record{
		Time: vals[0], Estimate: vals[1], Lower: vals[2], Upper: vals[3],
		NRisk: int(vals[4]), NEvent: int(vals[5]), NCensor: int(vals[6]),
	}
	if _, ok := col[curve.KeyConfLow]; !ok {
		rec.Lower = rec.Estimate
	}
	if _, ok := col[curve.KeyConfHigh]; !ok {
		rec.Upper = rec.Estimate
	}
	return rec, nil
}

// Import reads a curve table from path. The format follows the extension:
// .json, or .csv / .tsv for tidy tables of the given kind.
func Import(path string, kind curve.Kind) (*curve.Model, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains([]string{".json", ".csv", ".tsv"}, ext) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported curve table %q (want .json, .csv or .tsv)", path)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	switch ext {
	case ".json":
		return ReadJSON(f)
	case ".tsv":
		return readDelimited(f, kind, '\t')
	}
	return ReadCSV(f, kind)
}
