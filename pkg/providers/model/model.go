// Package model holds the generation settings sent with every completion
// request and the catalog of models a provider accepts.
package model

// Bounds applied to every request before it is serialized.
const (
	MinTemperature = 0.0
	MaxTemperature = 1.0
	MinMaxTokens   = 1
	MaxMaxTokens   = 8192
)

// Defaults used when neither the environment nor the caller supplies a value.
const (
	DefaultName        = "llama3-8b-8192"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// Config holds the per-call generation settings.
type Config struct {
	Name        string
	Temperature float64
	MaxTokens   int
}

// Default returns the built-in generation settings.
func Default() Config {
	return Config{
		Name:        DefaultName,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Overrides is a partial Config. Nil fields keep the value they are merged onto.
type Overrides struct {
	Name        *string
	Temperature *float64
	MaxTokens   *int
}

// Merge returns a copy of c with every set field of o applied.
func (c Config) Merge(o Overrides) Config {
	if o.Name != nil {
		c.Name = *o.Name
	}
	if o.Temperature != nil {
		c.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		c.MaxTokens = *o.MaxTokens
	}

	return c
}

// Clamped returns a copy of c with temperature and max tokens forced into
// their allowed ranges. The name is left untouched.
func (c Config) Clamped() Config {
	c.Temperature = ClampTemperature(c.Temperature)
	c.MaxTokens = ClampMaxTokens(c.MaxTokens)

	return c
}

// ClampTemperature forces t into [MinTemperature, MaxTemperature].
// NaN is treated as the lower bound.
func ClampTemperature(t float64) float64 {
	if t != t || t < MinTemperature {
		return MinTemperature
	}

	return min(t, MaxTemperature)
}

// ClampMaxTokens forces n into [MinMaxTokens, MaxMaxTokens].
func ClampMaxTokens(n int) int {
	return max(MinMaxTokens, min(n, MaxMaxTokens))
}
