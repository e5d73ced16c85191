package orchestrator

import (
	"fmt"

	"github.com/user/lanecrop/pkg/region"
)

// laneNames returns one file-safe name per lane. Lanes sharing a label and
// corner get a numeric suffix so that no two lanes write the same file.
func laneNames(lanes []*lane) []string {
	names := make([]string, len(lanes))
	seen := make(map[string]int, len(lanes))
	for i, l := range lanes {
		key := l.box.Key()
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s-%d", key, n)
		}
		names[i] = key
	}
	return names
}

// regionRecord is the debug representation of a resolved lane.
type regionRecord struct {
	Index  int        `json:"index"`
	Name   string     `json:"name"`
	Region region.Box `json:"region"`
	Crop   region.Box `json:"crop"`
	Path   string     `json:"path"`
}

func regionRecords(lanes []*lane) []regionRecord {
	out := make([]regionRecord, len(lanes))
	for i, l := range lanes {
		out[i] = regionRecord{
			Index:  l.index,
			Name:   l.name,
			Region: l.box,
			Crop:   l.crop,
			Path:   l.path,
		}
	}
	return out
}
