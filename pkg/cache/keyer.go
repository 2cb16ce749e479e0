package cache

// Keyer derives cache keys.
type Keyer interface {
	// ModelKey identifies an estimated model by its dataset digest and
	// estimation options.
	ModelKey(datasetHash string, opts ModelKeyOpts) string

	// ArtifactKey identifies one rendered output of a resolved figure.
	ArtifactKey(figureID string, opts ArtifactKeyOpts) string
}

// ModelKeyOpts holds the estimation settings that change a model.
type ModelKeyOpts struct {
	Kind       string `json:"kind"`
	Formula    string `json:"formula,omitempty"`
	Adjustment string `json:"adjustment,omitempty"`
	Estimator  string `json:"estimator,omitempty"`
}

// ArtifactKeyOpts holds the output settings that change rendered bytes.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	DPI      float64 `json:"dpi,omitempty"`
	WidthIn  float64 `json:"width_in,omitempty"`
	HeightIn float64 `json:"height_in,omitempty"`
}

// DefaultKeyer produces "model:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ModelKey implements [Keyer].
func (DefaultKeyer) ModelKey(datasetHash string, opts ModelKeyOpts) string {
	return hashKey("model", datasetHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(figureID string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", figureID, opts)
}
