package eeg

import "errors"

const (
	RegionFrontal   Region = "frontal"
	RegionCentral   Region = "central"
	RegionTemporal  Region = "temporal"
	RegionParietal  Region = "parietal"
	RegionOccipital Region = "occipital"
)

// ErrInvalidRegion is returned when a region label is outside the closed
// enumeration.
var ErrInvalidRegion = errors.New("invalid electrode region label")

// Region is a scalp region of the 10-20 electrode placement system.
type Region string

// Valid reports whether r is a member of the region enumeration.
func (r Region) Valid() bool {
	switch r {
	case RegionFrontal, RegionCentral, RegionTemporal, RegionParietal, RegionOccipital:
		return true
	}
	return false
}

// Channel describes one electrode of the 10-20 system: its code, scalp
// region and the static amplitude multiplier applied to everything the
// channel produces. Channels are lookup-table entries, not mutable entities.
type Channel struct {
	Code       string
	Region     Region
	Multiplier float64
}

// channelTable is the fixed 10-20 electrode set. Multipliers reflect the
// typical relative amplitude of each derivation in a referential montage.
var channelTable = map[string]Channel{
	"Fp1": {Code: "Fp1", Region: RegionFrontal, Multiplier: 0.8},
	"Fp2": {Code: "Fp2", Region: RegionFrontal, Multiplier: 0.8},
	"F3":  {Code: "F3", Region: RegionFrontal, Multiplier: 0.9},
	"F4":  {Code: "F4", Region: RegionFrontal, Multiplier: 0.9},
	"C3":  {Code: "C3", Region: RegionCentral, Multiplier: 1.0},
	"C4":  {Code: "C4", Region: RegionCentral, Multiplier: 1.0},
	"T3":  {Code: "T3", Region: RegionTemporal, Multiplier: 0.95},
	"T4":  {Code: "T4", Region: RegionTemporal, Multiplier: 0.95},
	"P3":  {Code: "P3", Region: RegionParietal, Multiplier: 1.1},
	"P4":  {Code: "P4", Region: RegionParietal, Multiplier: 1.1},
	"O1":  {Code: "O1", Region: RegionOccipital, Multiplier: 1.3},
	"O2":  {Code: "O2", Region: RegionOccipital, Multiplier: 1.3},
}

// LookupChannel resolves an electrode code to its table entry.
func LookupChannel(code string) (Channel, bool) {
	ch, ok := channelTable[code]
	return ch, ok
}

// ChannelCodes returns the electrode codes of the fixed channel table in
// frontal-to-occipital order.
func ChannelCodes() []string {
	return []string{"Fp1", "Fp2", "F3", "F4", "C3", "C4", "T3", "T4", "P3", "P4", "O1", "O2"}
}
