package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput   Phase = iota // 0: deliver last tick's events, scheduled spawns
	PhaseStep                 // 1: advance physics by one fixed step
	PhaseResolve              // 2: drain collision events into combat
	PhaseSync                 // 3: refresh cached transforms, expire actions
	PhaseOutput               // 4: publish the snapshot if it changed
	PhasePersist              // 5: hand chat batches to the archive
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "Input"
	case PhaseStep:
		return "Step"
	case PhaseResolve:
		return "Resolve"
	case PhaseSync:
		return "Sync"
	case PhaseOutput:
		return "Output"
	case PhasePersist:
		return "Persist"
	default:
		return "Unknown"
	}
}

// System is the interface every tick stage implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
