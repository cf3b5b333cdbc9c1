package deepgram

type deepgramVoice string

const defaultVoice deepgramVoice = "aura-asteria-en"

var availableVoices = []deepgramVoice{
	"aura-asteria-en",
	"aura-luna-en",
	"aura-stella-en",
	"aura-athena-en",
	"aura-hera-en",
	"aura-orion-en",
	"aura-arcas-en",
	"aura-perseus-en",
	"aura-angus-en",
	"aura-orpheus-en",
	"aura-helios-en",
	"aura-zeus-en",
	"aura-2-thalia-en",
	"aura-2-andromeda-en",
	"aura-2-helena-en",
	"aura-2-apollo-en",
	"aura-2-arcas-en",
	"aura-2-aries-en",
}

func GetAvailableVoices() []deepgramVoice {
	return availableVoices
}

// ParseVoice converts a voice name, returning false for unknown voices.
func ParseVoice(name string) (deepgramVoice, bool) {
	for _, voice := range availableVoices {
		if string(voice) == name {
			return voice, true
		}
	}
	return "", false
}
