package summary

import (
	"github.com/j-veylop/yoga-coach-tui/internal/models"
)

// RunSource is the read side of the run aggregator.
type RunSource interface {
	Run(program, runID string) *models.ProgramRun
	MostRecentCompletedRun(program string) *models.ProgramRun
	Peek(program string) *models.ProgramRun
}

// Load finds a run and derives its statistics. With a runID it looks in the
// archive first and then at the active run; without one it takes the most
// recent completed run. It returns nil when nothing matches.
func Load(src RunSource, program, runID string, order []string) *models.RunView {
	run := find(src, program, runID)
	if run == nil {
		return nil
	}
	return &models.RunView{
		Run:     run,
		Derived: ComputeDerived(run, order),
	}
}

func find(src RunSource, program, runID string) *models.ProgramRun {
	if runID == "" {
		return src.MostRecentCompletedRun(program)
	}
	if run := src.Run(program, runID); run != nil {
		return run
	}
	if run := src.Peek(program); run != nil && run.RunID == runID {
		return run
	}
	return nil
}
