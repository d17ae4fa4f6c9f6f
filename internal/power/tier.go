package power

import "fmt"

// Tier is a picture-size band driving clock rate selection.
type Tier int

const (
	TierUHD Tier = iota // above 1920x1088
	TierFHD             // above 1280x720
	TierHD              // above 720x480
	TierSD
)

func (t Tier) String() string {
	switch t {
	case TierUHD:
		return "uhd"
	case TierFHD:
		return "fhd"
	case TierHD:
		return "hd"
	case TierSD:
		return "sd"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Classify maps a picture size to its tier by pixel count.
func Classify(width, height int) Tier {
	px := width * height
	switch {
	case px > 1920*1088:
		return TierUHD
	case px > 1280*720:
		return TierFHD
	case px > 720*480:
		return TierHD
	default:
		return TierSD
	}
}

// Rates is one (bus, core, leaf) frequency triple in Hz.
type Rates struct {
	Bus  uint64
	Core uint64
	Leaf uint64
}

// DefaultTiers holds the rate triple for each Tier.
var DefaultTiers = [4]Rates{
	TierUHD: {Bus: 400_000_000, Core: 600_000_000, Leaf: 300_000_000},
	TierFHD: {Bus: 300_000_000, Core: 450_000_000, Leaf: 200_000_000},
	TierHD:  {Bus: 200_000_000, Core: 300_000_000, Leaf: 150_000_000},
	TierSD:  {Bus: 150_000_000, Core: 200_000_000, Leaf: 100_000_000},
}
