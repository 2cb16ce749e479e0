package io

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
)

const tidyCSV = `time,n.risk,n.event,n.censor,estimate,conf.low,conf.high,strata
0,10,0,0,1,1,1,Control
2,10,2,1,0.8,0.6,0.95,Control
4,7,3,0,0.5,0.3,0.7,Control
0,12,0,0,1,1,1,Treated
3,12,1,0,0.9,NA,NA,Treated
`

func TestReadCSV(t *testing.T) {
	m, err := ReadCSV(strings.NewReader(tidyCSV), curve.KindSurvival)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.IDs(); len(got) != 2 || got[0] != "Control" || got[1] != "Treated" {
		t.Fatalf("strata = %v", got)
	}
	rec, _ := m.Lookup("Control", 3)
	if rec.NRisk != 10 || rec.CumEvent != 2 || rec.Upper != 0.95 {
		t.Errorf("lookup = %+v", rec)
	}
	rec, _ = m.Lookup("Treated", 3)
	if rec.Lower != 0 {
		t.Errorf("NA should read as zero, got %g", rec.Lower)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidFormat},
		{"missing column", "time,estimate\n0,1\n", errors.ErrCodeInvalidFormat},
		{"bad number", "time,n.risk,estimate\nzero,10,1\n", errors.ErrCodeInvalidFormat},
		{"decreasing time", "time,n.risk,estimate\n2,10,1\n1,9,0.9\n", errors.ErrCodeConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), curve.KindSurvival)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	m, err := ReadCSV(strings.NewReader(tidyCSV), curve.KindSurvival)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(m, &buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.Kind() != m.Kind() || back.Len() != m.Len() {
		t.Fatalf("round trip: %v vs %v", back, m)
	}
	for _, id := range m.IDs() {
		a, _ := m.Stratum(id)
		b, _ := back.Stratum(id)
		if len(a.Records) != len(b.Records) || a.Records[1] != b.Records[1] {
			t.Errorf("stratum %s differs", id)
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	m, err := curve.New(curve.KindIncidence,
		curve.Stratum{Label: "A", Outcome: "relapse", Records: []curve.Record{{Time: 0, NRisk: 5}, {Time: 1.5, Estimate: 0.2, NRisk: 5, NEvent: 1}}},
		curve.Stratum{Label: "A", Outcome: "death", Records: []curve.Record{{Time: 0, NRisk: 5}}},
	)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(m, &buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadCSV(&buf, curve.KindIncidence)
	if err != nil {
		t.Fatal(err)
	}
	if got := back.IDs(); len(got) != 2 || got[0] != "A / relapse" {
		t.Errorf("ids = %v", got)
	}
}

func TestReadJSONEstimationError(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"error": "model failed to converge"}`))
	if !errors.Is(err, errors.ErrCodeEstimation) {
		t.Fatalf("err = %v, want ESTIMATION", err)
	}
	if !strings.Contains(err.Error(), "converge") {
		t.Errorf("message lost: %v", err)
	}
}

func TestFileEstimator(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "trial.csv"), []byte(tidyCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "failed.json"), []byte(`{"error":"singular fit"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	est := FileEstimator{Root: dir}
	ctx := context.Background()

	m, err := curve.Estimate(ctx, est, curve.Request{Dataset: "trial.csv", Formula: "Surv(time, status) ~ arm"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Errorf("strata = %d", m.Len())
	}

	_, err = curve.Estimate(ctx, est, curve.Request{Dataset: "failed.json"})
	if !errors.Is(err, errors.ErrCodeEstimation) || !strings.Contains(err.Error(), "singular fit") {
		t.Errorf("failed estimate err = %v, want the upstream ESTIMATION error", err)
	}

	_, err = curve.Estimate(ctx, est, curve.Request{Dataset: "trial.csv", Adjustment: "age"})
	if !errors.Is(err, errors.ErrCodeEstimation) {
		t.Errorf("adjusted err = %v", err)
	}

	_, err = curve.Estimate(ctx, est, curve.Request{Dataset: "missing.csv"})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing err = %v", err)
	}
}
