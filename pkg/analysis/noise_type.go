package analysis

// NoiseType is the dominant character of a frame as decided by the
// classifier.
type NoiseType int

const (
	NoiseTypeUnknown = NoiseType(iota)
	NoiseTypeSilence
	NoiseTypeSpeech
	NoiseTypeKeyboard
	NoiseTypeHVAC
	NoiseTypeMusic
)

func (t NoiseType) String() string {
	switch t {
	case NoiseTypeUnknown:
		return "unknown"
	case NoiseTypeSilence:
		return "silence"
	case NoiseTypeSpeech:
		return "speech"
	case NoiseTypeKeyboard:
		return "keyboard"
	case NoiseTypeHVAC:
		return "hvac"
	case NoiseTypeMusic:
		return "music"
	}
	return "invalid"
}
