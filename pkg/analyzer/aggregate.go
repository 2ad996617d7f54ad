package analyzer

import (
	"sort"
	"strconv"

	"github.com/ccollicutt/powerdump/pkg/parser"
)

// Aggregate sorts the extracted records into the five report tables and
// computes the peak projected drain. It does not modify records.
// A numeric field that fails to parse aborts with a *NumericFieldError.
func Aggregate(records *parser.Records, durations parser.DurationCalculator) (*Tables, error) {
	tables := &Tables{}
	var err error

	if tables.Aggregated, err = sortAppStats(TableAggregated, records.Aggregated); err != nil {
		return nil, err
	}
	if tables.Background, err = sortAppStats(TableBackground, records.Background); err != nil {
		return nil, err
	}
	if tables.Diagnostic, err = sortDiagnostic(records.Diagnostic, durations); err != nil {
		return nil, err
	}

	tables.SinceCharge = append([]parser.CollectorEntry(nil), records.SinceCharge...)

	if tables.Foreground, tables.Peak, err = projectForeground(records.Foreground); err != nil {
		return nil, err
	}

	return tables, nil
}

// sortAppStats orders a per-app section by power, highest first.
func sortAppStats(table Table, stats map[string]*parser.AppStat) ([]*parser.AppStat, error) {
	type keyed struct {
		stat  *parser.AppStat
		power float64
	}

	rows := make([]keyed, 0, len(stats))
	for _, stat := range stats {
		power, err := strconv.ParseFloat(stat.Power, 64)
		if err != nil {
			return nil, &NumericFieldError{Table: table, ID: stat.ID, Field: "mah", Value: stat.Power, Err: err}
		}
		rows = append(rows, keyed{stat: stat, power: power})
	}

	// Map iteration is random; identifier order breaks ties.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].power != rows[j].power {
			return rows[i].power > rows[j].power
		}
		return lessIdentifier(rows[i].stat.ID, rows[j].stat.ID)
	})

	out := make([]*parser.AppStat, len(rows))
	for i, r := range rows {
		out[i] = r.stat
	}
	return out, nil
}

// sortDiagnostic orders collector rows by window end, newest first, then
// by power. Window ends are compared chronologically; ends that do not
// parse sort after every parsed end and among themselves by text.
func sortDiagnostic(entries []parser.CollectorEntry, durations parser.DurationCalculator) ([]parser.CollectorEntry, error) {
	type keyed struct {
		entry  parser.CollectorEntry
		end    string
		parsed bool
		unix   int64
		power  float64
	}

	rows := make([]keyed, len(entries))
	for i, e := range entries {
		power, err := strconv.ParseFloat(e.Power, 64)
		if err != nil {
			return nil, &NumericFieldError{Table: TableDiagnostic, ID: e.ID, Field: "mah", Value: e.Power, Err: err}
		}
		k := keyed{entry: e, power: power}
		if e.Window != nil {
			k.end = e.Window.End
			if ts, ok := durations.Parse(e.Window.End); ok {
				k.parsed = true
				k.unix = ts.Unix()
			}
		}
		rows[i] = k
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.parsed != b.parsed:
			return a.parsed
		case a.parsed && a.unix != b.unix:
			return a.unix > b.unix
		case !a.parsed && a.end != b.end:
			return a.end > b.end
		}
		return a.power > b.power
	})

	out := make([]parser.CollectorEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry
	}
	return out, nil
}

// projectForeground orders foreground rows by raw charge, highest first,
// and extrapolates each to an hourly drain. The first row with the highest
// projection is the peak.
func projectForeground(entries []parser.ForegroundEntry) ([]ForegroundRow, *PeakDrain, error) {
	rows := make([]ForegroundRow, len(entries))
	for i, e := range entries {
		raw, err := strconv.ParseInt(e.RawCharge, 10, 64)
		if err != nil {
			return nil, nil, &NumericFieldError{Table: TableForeground, ID: e.ID, Field: "raw_uah", Value: e.RawCharge, Err: err}
		}
		secs, err := strconv.ParseInt(e.Elapsed, 10, 64)
		if err != nil {
			return nil, nil, &NumericFieldError{Table: TableForeground, ID: e.ID, Field: "seconds", Value: e.Elapsed, Err: err}
		}
		rows[i] = projectRow(e, raw, secs)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Raw > rows[j].Raw
	})

	var peak *PeakDrain
	for _, r := range rows {
		if peak == nil || r.ProjectedHourly > peak.ProjectedHourly {
			peak = &PeakDrain{ID: r.ID, Name: r.Name, ProjectedHourly: r.ProjectedHourly}
		}
	}

	return rows, peak, nil
}

// projectRow computes mAh = raw/1000, intensity = mAh/secs and the hourly
// projection intensity*3600, in that order.
func projectRow(e parser.ForegroundEntry, raw, secs int64) ForegroundRow {
	mah := float64(raw) / 1000
	intensity := 0.0
	if secs > 0 {
		intensity = mah / float64(secs)
	}

	return ForegroundRow{
		ForegroundEntry: e,
		Raw:             raw,
		MilliAmpHours:   mah,
		Seconds:         secs,
		Intensity:       intensity,
		ProjectedHourly: intensity * 3600,
	}
}

// lessIdentifier orders numeric identifiers by value without parsing them.
func lessIdentifier(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
