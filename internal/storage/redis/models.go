package redis

// cachedResolution is the JSON shape of a resolved VCF kept in Redis.
type cachedResolution struct {
	VCF             float64 `json:"vcf"`
	UsedDensity     float64 `json:"used_density"`
	UsedTemperature float64 `json:"used_temperature"`
}
