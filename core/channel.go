package core

import (
	"slices"

	"github.com/hfconf/hfconf/schema"
)

// Channel groups regions analysed together as one fit category. The binning
// is passed through to the fitting engine untouched.
type Channel struct {
	name    string
	regions []string
	nBins   int
	low     float64
	high    float64
	owner   *FitConfig
}

// Name returns the channel variable name. Distinct channels may share it.
func (c *Channel) Name() string { return c.name }

// Regions returns a copy of the aggregated regions.
func (c *Channel) Regions() []string { return slices.Clone(c.regions) }

// NBins returns the bin count.
func (c *Channel) NBins() int { return c.nBins }

// Low returns the low bin edge.
func (c *Channel) Low() float64 { return c.low }

// High returns the high bin edge.
func (c *Channel) High() float64 { return c.high }

// Role returns the role the owning fit config assigned to the channel.
func (c *Channel) Role() schema.ChannelRole {
	switch {
	case c.owner == nil:
		return schema.UnassignedRole
	case slices.Contains(c.owner.signalChannels, c):
		return schema.SignalRole
	case slices.Contains(c.owner.bkgConstrainChannels, c):
		return schema.BkgConstrainRole
	default:
		return schema.UnassignedRole
	}
}

func (c *Channel) summary() schema.ChannelSummary {
	return schema.ChannelSummary{
		Name:    c.name,
		Regions: c.Regions(),
		NBins:   c.nBins,
		Low:     c.low,
		High:    c.high,
		Role:    c.Role(),
	}
}
