// Package uncertainty - noise model file loading
package uncertainty

import (
	"os"

	"gopkg.in/yaml.v3"

	"fundalloc/internal/errors"
)

// LoadNoiseModel reads a YAML noise model file. Factors without a
// distribution default to normal; a zero seed falls back to the
// default model's seed.
func LoadNoiseModel(path string) (NoiseModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NoiseModel{}, errors.Wrapf(errors.TypeConfig, err, "failed to read noise model %s", path)
	}

	var model NoiseModel
	if err := yaml.Unmarshal(data, &model); err != nil {
		return NoiseModel{}, errors.Wrapf(errors.TypeConfig, err, "failed to parse noise model %s", path)
	}

	for name, factor := range model.Factors {
		if factor.StdDev < 0 {
			return NoiseModel{}, errors.Configf("noise factor %q has negative stddev %.4f", name, factor.StdDev)
		}
		switch factor.Distribution {
		case "", DistributionNormal, DistributionUniform:
		default:
			return NoiseModel{}, errors.Configf("noise factor %q has unknown distribution %q", name, factor.Distribution)
		}
		if factor.Min != nil && factor.Max != nil && *factor.Min > *factor.Max {
			return NoiseModel{}, errors.Configf("noise factor %q has min %.4f above max %.4f", name, *factor.Min, *factor.Max)
		}
	}
	if model.Seed == 0 {
		model.Seed = DefaultNoiseModel().Seed
	}
	return model, nil
}
