package parser

import (
	"context"
	"fmt"
	"strings"
)

// Resolution is the output of the identifier pass.
type Resolution struct {
	Identifiers IdentifierMap
	Metadata    DumpMetadata

	// LinesScanned is the number of lines read.
	LinesScanned int

	// LinesSkipped is the number of oversized lines ignored.
	LinesSkipped int
}

// identifierResolver pairs each name declaration with the next identifier
// declaration. pending is empty when no name is waiting.
type identifierResolver struct {
	opts    *Options
	ids     IdentifierMap
	pending string
}

func (r *identifierResolver) consume(line string) {
	if m := r.opts.NamePattern.FindStringSubmatch(line); m != nil {
		r.pending = m[1]
	}

	if r.pending == "" {
		return
	}

	if m := r.opts.IdentifierPattern.FindStringSubmatch(line); m != nil {
		r.ids[m[1]] = r.pending
		r.pending = ""
	}
}

// ResolveIdentifiers runs the first pass over src, building the identifier
// map and collecting dump-wide labels. Lines that match nothing are ignored.
func ResolveIdentifiers(ctx context.Context, src LineSource, opts Options) (*Resolution, error) {
	res := &Resolution{
		Identifiers: make(IdentifierMap),
		Metadata: DumpMetadata{
			StartClock:       UnknownStartClock,
			WindowLabel:      UnknownWindow,
			SinceChargeLabel: UnknownSinceCharge,
		},
	}
	resolver := &identifierResolver{opts: &opts, ids: res.Identifiers}
	m := opts.Markers

	skipped, err := forEachLine(ctx, src, func(line *Line) {
		res.LinesScanned++
		raw := line.Raw

		if strings.Contains(raw, m.Window) {
			if label := payloadAfter(raw, m.Window); label != "" {
				res.Metadata.WindowLabel = label
			}
		}
		if strings.Contains(raw, m.StartClock) {
			res.Metadata.StartClock = payloadAfter(raw, m.StartClock)
		}
		if strings.Contains(raw, m.SinceCharge) {
			res.Metadata.SinceChargeLabel = payloadAfter(raw, m.SinceCharge)
		}

		resolver.consume(raw)
	})
	if err != nil {
		return nil, fmt.Errorf("resolving identifiers: %w", err)
	}
	res.LinesSkipped = skipped

	return res, nil
}

// payloadAfter returns the trimmed text following the first occurrence of marker.
func payloadAfter(line, marker string) string {
	i := strings.Index(line, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(line[i+len(marker):])
}
