package matching

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights is the share of the 100-point score each factor can earn.
type Weights struct {
	Budget      float64 `yaml:"budget" json:"budget"`
	Cleanliness float64 `yaml:"cleanliness_level" json:"cleanliness_level"`
	Noise       float64 `yaml:"noise_tolerance" json:"noise_tolerance"`
	Sleep       float64 `yaml:"sleep_schedule" json:"sleep_schedule"`
	Smoking     float64 `yaml:"smoking" json:"smoking"`
	Pets        float64 `yaml:"pets" json:"pets"`
	Guests      float64 `yaml:"guests_allowed" json:"guests_allowed"`
	City        float64 `yaml:"city" json:"city"`
	Interests   float64 `yaml:"interests" json:"interests"`
}

// DefaultWeights splits 25 budget, 40 lifestyle, 20 city, 15 interests.
func DefaultWeights() Weights {
	return Weights{
		Budget:      25,
		Cleanliness: 7,
		Noise:       7,
		Sleep:       7,
		Smoking:     7,
		Pets:        6,
		Guests:      6,
		City:        20,
		Interests:   15,
	}
}

const weightTolerance = 1e-6

// Total sums all factor weights.
func (w Weights) Total() float64 {
	return w.Budget + w.Cleanliness + w.Noise + w.Sleep + w.Smoking + w.Pets + w.Guests + w.City + w.Interests
}

// Validate requires non-negative weights summing to 100.
func (w Weights) Validate() error {
	named := map[string]float64{
		"budget":            w.Budget,
		"cleanliness_level": w.Cleanliness,
		"noise_tolerance":   w.Noise,
		"sleep_schedule":    w.Sleep,
		"smoking":           w.Smoking,
		"pets":              w.Pets,
		"guests_allowed":    w.Guests,
		"city":              w.City,
		"interests":         w.Interests,
	}
	for name, v := range named {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %s must be a non-negative number, got %v", name, v)
		}
	}
	if total := w.Total(); math.Abs(total-100) > weightTolerance {
		return fmt.Errorf("weights must sum to 100, got %v", total)
	}
	return nil
}

// LoadWeights reads a YAML weight table. An empty path yields the defaults.
func LoadWeights(path string) (Weights, error) {
	if path == "" {
		return DefaultWeights(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read weights file: %w", err)
	}
	var w Weights
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return Weights{}, fmt.Errorf("parse weights file: %w", err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}
