package eeg

import "errors"

const (
	StageWake Stage = "Wake"
	StageN1   Stage = "N1"
	StageN2   Stage = "N2"
	StageN3   Stage = "N3"
	StageREM  Stage = "REM"
)

// ErrInvalidStage is returned when a stage label is outside the closed
// enumeration. Callers holding a Stage obtained from ParseStage or from the
// package constants never see it.
var ErrInvalidStage = errors.New("invalid sleep stage label")

// Stage is a discrete sleep phase label.
type Stage string

// StageInfo carries the static display metadata for a stage. The synthesis
// and detection code never reads it; it exists for rendering collaborators.
type StageInfo struct {
	Name  string // Human-readable name (e.g., "Deep Sleep")
	Color string // Display color as #rrggbb
	Icon  string // Short glyph for compact UIs
}

var stageInfo = map[Stage]StageInfo{
	StageWake: {Name: "Awake", Color: "#f4a261", Icon: "☀"},
	StageN1:   {Name: "Light Sleep (N1)", Color: "#8ecae6", Icon: "◔"},
	StageN2:   {Name: "Light Sleep (N2)", Color: "#219ebc", Icon: "◑"},
	StageN3:   {Name: "Deep Sleep (N3)", Color: "#023047", Icon: "●"},
	StageREM:  {Name: "REM Sleep", Color: "#9b5de5", Icon: "◉"},
}

// Stages lists all members of the stage enumeration in wake-to-REM order.
var Stages = []Stage{StageWake, StageN1, StageN2, StageN3, StageREM}

// Valid reports whether s is a member of the stage enumeration.
func (s Stage) Valid() bool {
	_, ok := stageInfo[s]
	return ok
}

// Info returns the display metadata for the stage. Unknown stages map to the
// zero StageInfo.
func (s Stage) Info() StageInfo {
	return stageInfo[s]
}

func (s Stage) String() string {
	return string(s)
}

// ParseStage converts a raw label into a Stage, failing with ErrInvalidStage
// for labels outside the enumeration.
func ParseStage(label string) (Stage, error) {
	s := Stage(label)
	if !s.Valid() {
		return "", ErrInvalidStage
	}
	return s, nil
}

// StageInterval is the sparse form of a stage timeline: a run of a single
// stage starting at Start seconds and lasting Duration seconds. A valid
// interval list is non-overlapping, contiguous and covers [0, total).
type StageInterval struct {
	Stage    Stage   `json:"stage"`
	Start    float64 `json:"startTime"`
	Duration float64 `json:"duration"`
}

// End returns the exclusive end time of the interval in seconds.
func (si StageInterval) End() float64 {
	return si.Start + si.Duration
}
