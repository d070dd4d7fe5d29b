package workflow

// Stage is a node of the fixed pipeline graph.
type Stage int

const (
	StageClassify Stage = iota
	StageSearch
	StageExtract
	StageGenerate
	StageDone
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageClassify:
		return "classify"
	case StageSearch:
		return "search"
	case StageExtract:
		return "extract"
	case StageGenerate:
		return "generate"
	case StageDone:
		return "done"
	case StageError:
		return "error"
	}
	return "unknown"
}

// next is the success edge of each working stage. Every working stage also
// has an edge to StageError, taken when its Outcome fails.
var next = map[Stage]Stage{
	StageClassify: StageSearch,
	StageSearch:   StageExtract,
	StageExtract:  StageGenerate,
	StageGenerate: StageDone,
}

// Outcome is the result of running one stage: Continue or Fail(reason).
type Outcome struct {
	failed bool
	reason string
}

func Continue() Outcome { return Outcome{} }

func Fail(reason string) Outcome { return Outcome{failed: true, reason: reason} }

func (o Outcome) Failed() bool { return o.failed }

func (o Outcome) Reason() string { return o.reason }

// transition picks the stage that follows s given its outcome.
func transition(s Stage, o Outcome) Stage {
	if o.failed {
		return StageError
	}
	if n, ok := next[s]; ok {
		return n
	}
	return StageDone
}
