package domain

// WhisperModels lists the model names accepted by the WhisperX image.
// Configuration validation rejects anything outside this set.
var WhisperModels = []string{
	"tiny",
	"tiny.en",
	"base",
	"base.en",
	"small",
	"small.en",
	"medium",
	"medium.en",
	"large-v1",
	"large-v2",
	"large-v3",
	"large-v3-turbo",
}

// IsKnownWhisperModel reports whether name is a recognized model preset.
func IsKnownWhisperModel(name string) bool {
	for _, m := range WhisperModels {
		if m == name {
			return true
		}
	}
	return false
}
