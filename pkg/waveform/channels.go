package waveform

import (
	"strings"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

// ExpandChannels turns a channel spec like "BH?" or "BHZ,BHN,BHE" into a
// concrete channel list: any 3-character entry ending in '?' expands to its
// Z, N and E components, everything else passes through. Duplicates collapse,
// first occurrence order is kept.
func ExpandChannels(spec string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(c string) {
		if _, dup := seen[c]; dup {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.ToUpper(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if len(entry) == 3 && strings.HasSuffix(entry, "?") {
			prefix := entry[:2]
			add(prefix + "Z")
			add(prefix + "N")
			add(prefix + "E")
			continue
		}
		add(entry)
	}
	return out
}

// resolveChannels intersects the expanded request with the station's known
// channel-type prefixes. A station without matching type metadata falls back
// to the full expanded list rather than silently resolving to nothing.
func resolveChannels(station models.Station, expanded []string) []string {
	if len(station.ChannelTypes) == 0 {
		return expanded
	}
	types := make(map[string]struct{}, len(station.ChannelTypes))
	for _, t := range station.ChannelTypes {
		types[strings.ToUpper(t)] = struct{}{}
	}
	var out []string
	for _, cha := range expanded {
		if len(cha) < 2 {
			continue
		}
		if _, ok := types[cha[:2]]; ok {
			out = append(out, cha)
		}
	}
	if len(out) == 0 {
		return expanded
	}
	return out
}
