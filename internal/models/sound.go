package models

// AlarmSound is one entry of the alarm sound library.
type AlarmSound struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	IsCustom       bool   `json:"is_custom"`
	SourceLocation string `json:"source_location,omitempty"` // set only for custom sounds
}

// BuiltinSounds returns the sounds that exist for the process lifetime.
func BuiltinSounds() []AlarmSound {
	return []AlarmSound{
		{ID: SoundDefault, DisplayName: "Default"},
		{ID: SoundNone, DisplayName: "Vibration only"},
		{ID: SoundSilent, DisplayName: "Silent"},
	}
}

// IsBuiltinSound reports whether id names a built-in sound.
func IsBuiltinSound(id string) bool {
	return id == SoundDefault || id == SoundNone || id == SoundSilent
}
