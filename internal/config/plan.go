// This file loads projection plans from YAML and CSV files.

package config

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agbru/funnelcalc/internal/funnel"
)

// Plan file keys. The conversion rate uses the shorter key of the form.
const (
	KeyName           = "name"
	KeyDesiredRevenue = "desired_revenue"
	KeyMediaBudget    = "media_budget"
	KeyAverageTicket  = "average_ticket"
	KeyConversionRate = "conversion_rate"
)

// PlanFile is one plan as written in a file. Absent values are nil and fall
// back to the base input when merged.
type PlanFile struct {
	Name           string   `yaml:"name"`
	DesiredRevenue *float64 `yaml:"desired_revenue"`
	MediaBudget    *float64 `yaml:"media_budget"`
	AverageTicket  *float64 `yaml:"average_ticket"`
	ConversionRate *float64 `yaml:"conversion_rate"`
}

// Plan is a named, fully resolved input.
type Plan struct {
	Name  string
	Input funnel.Input
}

// Merge overlays the values present in p onto base. Fields listed in pinned
// keep the base value.
func (p PlanFile) Merge(base funnel.Input, pinned map[string]bool) funnel.Input {
	out := base
	for _, v := range []struct {
		field InputField
		value *float64
	}{
		{RevenueField, p.DesiredRevenue},
		{BudgetField, p.MediaBudget},
		{TicketField, p.AverageTicket},
		{RateField, p.ConversionRate},
	} {
		if v.value != nil && !pinned[v.field.Key] {
			v.field.Set(&out, *v.value)
		}
	}
	return out
}

// LoadPlan reads a single YAML plan. Unknown keys are rejected.
func LoadPlan(path string) (PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanFile{}, fmt.Errorf("reading plan file: %w", err)
	}
	var p PlanFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return PlanFile{}, fmt.Errorf("parsing plan file %s: %w", path, err)
	}
	return p, nil
}

// LoadPlans reads a list of plans. Files ending in .csv are read as CSV with a
// header row; anything else is read as YAML with a top-level "plans" list.
// Missing values are taken from base and unnamed plans are numbered.
func LoadPlans(path string, base funnel.Input) ([]Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plans file: %w", err)
	}
	defer f.Close()

	var files []PlanFile
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		files, err = decodeCSVPlans(f)
	} else {
		files, err = decodeYAMLPlans(f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing plans file %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("plans file %s contains no plans", path)
	}

	plans := make([]Plan, len(files))
	for i, pf := range files {
		name := pf.Name
		if name == "" {
			name = fmt.Sprintf("plan-%d", i+1)
		}
		plans[i] = Plan{Name: name, Input: pf.Merge(base, nil)}
	}
	return plans, nil
}

func decodeYAMLPlans(r io.Reader) ([]PlanFile, error) {
	var doc struct {
		Plans []PlanFile `yaml:"plans"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return doc.Plans, nil
}

func decodeCSVPlans(r io.Reader) ([]PlanFile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
		switch header[i] {
		case KeyName, KeyDesiredRevenue, KeyMediaBudget, KeyAverageTicket, KeyConversionRate:
		default:
			return nil, fmt.Errorf("unknown column %q", col)
		}
	}

	plans := make([]PlanFile, 0, len(records)-1)
	for line, rec := range records[1:] {
		var p PlanFile
		for i, cell := range rec {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if header[i] == KeyName {
				p.Name = cell
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", line+2, header[i], err)
			}
			switch header[i] {
			case KeyDesiredRevenue:
				p.DesiredRevenue = &v
			case KeyMediaBudget:
				p.MediaBudget = &v
			case KeyAverageTicket:
				p.AverageTicket = &v
			case KeyConversionRate:
				p.ConversionRate = &v
			}
		}
		plans = append(plans, p)
	}
	return plans, nil
}
