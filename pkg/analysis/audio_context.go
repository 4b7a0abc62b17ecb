package analysis

// FrequencyProfile is the spectral shape of one frame.
type FrequencyProfile struct {
	// TotalEnergy is the mean square of the raw samples.
	TotalEnergy float64

	// Low/Mid/HighFreqRatio are the shares of spectral magnitude in the
	// lower quarter, middle half and upper quarter of the bins.
	LowFreqRatio  float64
	MidFreqRatio  float64
	HighFreqRatio float64

	// SpectralCentroid is the magnitude-weighted mean frequency, Hz.
	SpectralCentroid float64

	// SpectralRolloff is the frequency below which 85% of the spectral
	// power is contained, Hz.
	SpectralRolloff float64
}

// AudioContext is everything the analysis stage learned about a frame.
type AudioContext struct {
	VoiceProbability float64
	NoiseType        NoiseType
	Profile          FrequencyProfile

	// RecommendedGain is a first-approximation gain for the detected
	// noise type; the adaptive gain stage refines it.
	RecommendedGain float64
}
