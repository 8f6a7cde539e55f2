package liquidglass

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Built-in preset names.
const (
	PresetDefault      = "default"
	PresetPlayground   = "playground"
	PresetSliderBubble = "slider-bubble"
)

// Slider bubble sizes at rest and while the thumb is dragged.
const (
	bubbleRestW = 30
	bubbleRestH = 20
	bubbleDragW = 60
	bubbleDragH = 35
)

// Preset returns a built-in parameter set by name.
func Preset(name string) (Params, bool) {
	switch name {
	case PresetDefault:
		return DefaultParams(), true
	case PresetPlayground:
		return ParamsPatch{
			Width:            Float(300),
			Height:           Float(200),
			DarknessBlur:     Float(0),
			LightnessOpacity: Float(0),
		}.Resolve(), true
	case PresetSliderBubble:
		return ParamsPatch{
			Width:            Float(bubbleRestW),
			Height:           Float(bubbleRestH),
			CornerRadius:     Float(17),
			DarknessOpacity:  Float(0),
			DarknessBlur:     Float(0),
			LightnessOpacity: Float(0),
			LightnessBlur:    Float(0),
			CenterDistortion: Float(0),
			CenterSize:       Float(17),
			PreBlur:          Float(0),
			PostBlur:         Float(0),
			Iridescence:      Float(5),
		}.Resolve(), true
	}
	return Params{}, false
}

// PresetNames lists the built-in presets in sorted order.
func PresetNames() []string {
	names := []string{PresetDefault, PresetPlayground, PresetSliderBubble}
	sort.Strings(names)
	return names
}

// LoadParams decodes a JSON object of parameters. Keys that are missing take
// their default values.
func LoadParams(jsonData []byte) (Params, error) {
	p := DefaultParams()
	if err := json.Unmarshal(jsonData, &p); err != nil {
		return Params{}, fmt.Errorf("parse params: %w", err)
	}
	return p, nil
}

// presetFile is the top-level JSON structure for a preset file.
type presetFile struct {
	Presets map[string]ParamsPatch `json:"presets"`
}

// LoadPresets parses a preset file of the form
//
//	{"presets": {"frosted": {"preBlur": 40}, ...}}
//
// Every preset is resolved against the defaults.
func LoadPresets(jsonData []byte) (map[string]Params, error) {
	var file presetFile
	if err := json.Unmarshal(jsonData, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("parse presets: no presets")
	}
	out := make(map[string]Params, len(file.Presets))
	for name, patch := range file.Presets {
		out[name] = patch.Resolve()
	}
	return out, nil
}
