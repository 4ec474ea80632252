package config

import (
	"cssbust/bust"
)

// How cachebuster value is produced for the run.
// ENUM(mtime, checksum, template)
type StrategyType int

// Bust maps configured strategy to the name understood by bust.NewOptions.
// Template strategy becomes custom function which caller has to supply.
func (s StrategyType) Bust() string {
	if s == StrategyTypeTemplate {
		return bust.StrategyKindCustom.String()
	}
	return s.String()
}
