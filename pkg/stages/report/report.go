// Package report implements the lane report stage. It runs after every
// encoder is closed and inspects the finished lane files.
package report

import (
	"context"
	"runtime"
	"sync"

	"github.com/user/lanecrop/pkg/pipeline"
	"github.com/user/lanecrop/pkg/ports"
)

// Stage builds one LaneReport per lane.
type Stage struct {
	prober     ports.MediaProber
	fs         ports.FileSystem
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new report stage. A nil prober skips container
// inspection.
func NewStage(prober ports.MediaProber, fs ports.FileSystem, logger ports.Logger, numWorkers int) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		prober:     prober,
		fs:         fs,
		logger:     logger.WithComponent("report"),
		numWorkers: numWorkers,
	}
}

// Execute reports on every lane. Lane problems are recorded in the reports,
// never returned as errors.
func (s *Stage) Execute(ctx context.Context, input pipeline.ReportInput) (pipeline.ReportResult, error) {
	reports := make([]pipeline.LaneReport, len(input.Lanes))
	if len(input.Lanes) == 0 {
		return pipeline.ReportResult{Lanes: reports}, nil
	}

	jobs := make(chan int, len(input.Lanes))
	for i := range input.Lanes {
		jobs <- i
	}
	close(jobs)

	workers := min(s.numWorkers, len(input.Lanes))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					reports[idx] = s.base(input.Lanes[idx])
					continue
				}
				// each worker owns distinct indices
				reports[idx] = s.inspect(input.Lanes[idx])
			}
		}()
	}
	wg.Wait()

	return pipeline.ReportResult{Lanes: reports}, ctx.Err()
}

// base fills the fields known without touching the file.
func (s *Stage) base(lane pipeline.LaneOutcome) pipeline.LaneReport {
	rep := pipeline.LaneReport{
		Index:         lane.Index,
		Name:          lane.Name,
		Path:          lane.Path,
		Region:        lane.Region,
		Crop:          lane.Crop,
		Frames:        lane.Stats.FramesIn,
		SourceStart:   lane.Stats.FirstTimestamp,
		LastTimestamp: lane.Stats.LastTimestamp,
		Bytes:         lane.Stats.BytesOut,
		Status:        pipeline.LaneWritten,
	}
	if lane.Err != nil {
		rep.Status = pipeline.LaneFailed
		rep.Error = lane.Err.Error()
	} else if lane.Stats.FramesIn == 0 {
		rep.Status = pipeline.LaneEmpty
	}
	return rep
}

func (s *Stage) inspect(lane pipeline.LaneOutcome) pipeline.LaneReport {
	rep := s.base(lane)
	if rep.Status == pipeline.LaneFailed {
		return rep
	}

	size, err := s.fs.Size(lane.Path)
	if err != nil {
		s.logger.Warn("Lane %s: cannot stat %s: %v", lane.Name, lane.Path, err)
		rep.Status = pipeline.LaneFailed
		rep.Error = err.Error()
		return rep
	}
	rep.Bytes = size

	if s.prober == nil || rep.Status == pipeline.LaneEmpty {
		return rep
	}

	info, err := s.prober.Probe(lane.Path)
	if err != nil {
		// the file exists, probing is informational only
		s.logger.Warn("Lane %s: cannot probe %s: %v", lane.Name, lane.Path, err)
		return rep
	}
	rep.Media = &info
	s.logger.Debug("Lane %s: %d samples, %.2fs", lane.Name, info.Samples, info.Duration)

	return rep
}
