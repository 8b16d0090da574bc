// Package schema has configs, models and shared constants for all parts of hfconf.
package schema

// RegionKey identifies a histogram by its region and the channel variable it is built in.
type RegionKey struct {
	Region  string `json:"region"`
	Channel string `json:"channel"`
}

// String renders the key as "region/channel".
func (k RegionKey) String() string {
	return k.Region + "/" + k.Channel
}

// NormRegion is a (region, channel) pair used to derive a sample's normalization from data.
type NormRegion = RegionKey

// NormFactor is a free normalization parameter declared on a sample.
type NormFactor struct {
	Name    string  `json:"name"`
	Initial float64 `json:"initial"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
}

// ParamSetting pins or seeds a fit parameter on a measurement.
type ParamSetting struct {
	Name     string  `json:"name"`
	Constant bool    `json:"constant"`
	Value    float64 `json:"value"`
}
