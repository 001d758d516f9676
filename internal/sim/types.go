package sim

import "github.com/san-kum/qgsim/internal/dynamo"

type Observer interface {
	OnStep(s dynamo.Sample)
}

type Metric interface {
	Name() string
	Observe(s dynamo.Sample)
	Value() float64
	Reset()
}

type Config struct {
	TimeMax          float64
	StopOnTransition bool
	HaltOnDegenerate bool
}

func DefaultConfig() Config {
	return Config{
		TimeMax:          10.0,
		StopOnTransition: true,
		HaltOnDegenerate: true,
	}
}

// Outcome is the terminal state of a run.
type Outcome int

const (
	Exhausted Outcome = iota
	Transitioned
	Degenerate
)

func (o Outcome) String() string {
	switch o {
	case Exhausted:
		return "exhausted"
	case Transitioned:
		return "transitioned"
	case Degenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

type Result struct {
	Samples     []dynamo.Sample
	Final       dynamo.State
	Outcome     Outcome
	CrossedAt   int // step index of the first crossing, -1 if none
	CrossedTime float64
	StepsTaken  int
	Metrics     map[string]float64
	Errors      []error
}
