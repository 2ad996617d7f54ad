package parser

import (
	"regexp"
	"strings"
)

var (
	// appStatRow matches "<uid>: <mAh> (<details>)".
	appStatRow = regexp.MustCompile(`^\s*(\d+):\s*([\d.]+)\s*\((.*?)\)`)

	// attributeKey finds "key=" tokens anywhere in the details.
	attributeKey = regexp.MustCompile(`(\w+)=`)

	// collectorRow matches "<uid> | <mAh> | <fg> | <bg> | <name>".
	collectorRow = regexp.MustCompile(`^\s*(\d+)\s*\|\s*([\d.]+)\s*\|\s*(.*?)\s*\|\s*(.*?)\s*\|\s*(.*)`)

	// foregroundRow matches an eight-field row whose 1st, 2nd and 7th
	// fields are integers and 3rd-6th are decimals.
	foregroundRow = regexp.MustCompile(
		`^\s*(\d+)\s*\|\s*(\d+)\s*\|\s*[\d.]+\s*\|\s*[\d.]+\s*\|\s*[\d.]+\s*\|\s*[\d.]+\s*\|\s*(\d+)\s*\|\s*(.*)`)
)

// extractContext is attached to every record at extraction time.
type extractContext struct {
	ids      IdentifierMap
	window   Window
	duration string
}

// ParseAttributes splits "k1=v1 k2=some value k3=v3" into pairs. A value
// runs until the next key token or the end of details and is trimmed.
// Pairs rejected by filter are dropped, so in "cpu=1s,wake=2" only wake
// survives the default value pattern.
func ParseAttributes(details string, filter AttributeFilter) map[string]string {
	locs := attributeKey.FindAllStringSubmatchIndex(details, -1)
	if len(locs) == 0 {
		return nil
	}

	attrs := make(map[string]string, len(locs))
	for i, loc := range locs {
		key := details[loc[2]:loc[3]]
		end := len(details)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := strings.TrimSpace(details[loc[1]:end])
		if value == "" || !filter.Allows(key, value) {
			continue
		}
		attrs[key] = value
	}

	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

// extractAppStat parses a per-app key=value row.
func extractAppStat(line string, ec extractContext, filter AttributeFilter) (*AppStat, bool) {
	m := appStatRow.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	return &AppStat{
		ID:         m[1],
		Name:       ec.ids.Resolve(m[1]),
		Power:      m[2],
		Attributes: ParseAttributes(m[3], filter),
		Window:     ec.window,
		Duration:   ec.duration,
	}, true
}

// extractCollector parses a collector row. Window context is attached
// only when withWindow is set.
func extractCollector(line string, ec extractContext, withWindow bool) (CollectorEntry, bool) {
	m := collectorRow.FindStringSubmatch(line)
	if m == nil {
		return CollectorEntry{}, false
	}

	entry := CollectorEntry{
		ID:         m[1],
		Power:      m[2],
		Foreground: strings.TrimSpace(m[3]),
		Background: strings.TrimSpace(m[4]),
		Name:       strings.TrimSpace(m[5]),
	}
	if withWindow {
		w := ec.window
		entry.Window = &w
		entry.Duration = ec.duration
	}
	return entry, true
}

// extractForeground parses a foreground report row. The name is the text
// of the last field before any "<" annotation, or the resolved identifier
// when that text is blank.
func extractForeground(line string, ec extractContext) (ForegroundEntry, bool) {
	m := foregroundRow.FindStringSubmatch(line)
	if m == nil {
		return ForegroundEntry{}, false
	}

	name, _, _ := strings.Cut(m[4], "<")
	name = strings.TrimSpace(name)
	if name == "" {
		name = ec.ids.Resolve(m[1])
	}

	return ForegroundEntry{
		ID:        m[1],
		RawCharge: m[2],
		Elapsed:   m[3],
		Name:      name,
		Window:    ec.window,
		Duration:  ec.duration,
	}, true
}
