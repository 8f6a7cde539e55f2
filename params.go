package liquidglass

import (
	"bytes"
	"encoding/json"
)

// Params are the twelve numeric inputs of the glass effect. Every field is
// independent. Values are never validated or clamped: a negative blur or an
// opacity above 100 flows into the filter graph as-is.
type Params struct {
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	CornerRadius     float64 `json:"cornerRadius"`
	DarknessOpacity  float64 `json:"darknessOpacity"`
	DarknessBlur     float64 `json:"darknessBlur"`
	LightnessOpacity float64 `json:"lightnessOpacity"`
	LightnessBlur    float64 `json:"lightnessBlur"`
	CenterDistortion float64 `json:"centerDistortion"`
	CenterSize       float64 `json:"centerSize"`
	PreBlur          float64 `json:"preBlur"`
	PostBlur         float64 `json:"postBlur"`
	Iridescence      float64 `json:"iridescence"`
}

// DefaultParams returns the values used for any parameter the caller omits.
func DefaultParams() Params {
	return Params{
		Width:            100,
		Height:           100,
		CornerRadius:     25,
		DarknessOpacity:  17,
		DarknessBlur:     5,
		LightnessOpacity: 17,
		LightnessBlur:    15,
		CenterDistortion: 68,
		CenterSize:       15,
		PreBlur:          7,
		PostBlur:         0,
		Iridescence:      20,
	}
}

// Param identifies one field of Params.
type Param uint8

const (
	ParamWidth Param = iota
	ParamHeight
	ParamCornerRadius
	ParamDarknessOpacity
	ParamDarknessBlur
	ParamLightnessOpacity
	ParamLightnessBlur
	ParamCenterDistortion
	ParamCenterSize
	ParamPreBlur
	ParamPostBlur
	ParamIridescence

	paramCount
)

// ParamInfo describes a parameter for editors and serialization.
// Min, Max and Step are the ranges the playground sliders use; they are UI
// hints only.
type ParamInfo struct {
	Key   string
	Label string
	Unit  string
	Min   float64
	Max   float64
	Step  float64
}

var paramInfo = [paramCount]ParamInfo{
	ParamWidth:            {"width", "Width", "px", 100, 300, 10},
	ParamHeight:           {"height", "Height", "px", 100, 300, 10},
	ParamCornerRadius:     {"cornerRadius", "Corner Radius", "px", 0, 150, 1},
	ParamDarknessOpacity:  {"darknessOpacity", "Darkness Opacity", "%", 0, 100, 1},
	ParamDarknessBlur:     {"darknessBlur", "Darkness Blur", "px", 0, 50, 1},
	ParamLightnessOpacity: {"lightnessOpacity", "Lightness Opacity", "%", 0, 100, 1},
	ParamLightnessBlur:    {"lightnessBlur", "Lightness Blur", "px", 0, 50, 1},
	ParamCenterDistortion: {"centerDistortion", "Center Distortion", "", 0, 255, 1},
	ParamCenterSize:       {"centerSize", "Center Size", "", 0, 20, 1},
	ParamPreBlur:          {"preBlur", "Pre-blur", "", 0, 100, 1},
	ParamPostBlur:         {"postBlur", "Post-blur", "", 0, 100, 1},
	ParamIridescence:      {"iridescence", "Iridescence", "", 0, 50, 1},
}

// AllParams returns every Param in declaration order.
func AllParams() []Param {
	out := make([]Param, paramCount)
	for i := range out {
		out[i] = Param(i)
	}
	return out
}

// Info returns the descriptor for p. Unknown values return a zero ParamInfo.
func (p Param) Info() ParamInfo {
	if p >= paramCount {
		return ParamInfo{}
	}
	return paramInfo[p]
}

// String returns the parameter's JSON key.
func (p Param) String() string {
	return p.Info().Key
}

// ParamByKey looks up a parameter by its JSON key.
func ParamByKey(key string) (Param, bool) {
	for i, info := range paramInfo {
		if info.Key == key {
			return Param(i), true
		}
	}
	return 0, false
}

// field returns a pointer to the field p selects.
func (ps *Params) field(p Param) *float64 {
	switch p {
	case ParamWidth:
		return &ps.Width
	case ParamHeight:
		return &ps.Height
	case ParamCornerRadius:
		return &ps.CornerRadius
	case ParamDarknessOpacity:
		return &ps.DarknessOpacity
	case ParamDarknessBlur:
		return &ps.DarknessBlur
	case ParamLightnessOpacity:
		return &ps.LightnessOpacity
	case ParamLightnessBlur:
		return &ps.LightnessBlur
	case ParamCenterDistortion:
		return &ps.CenterDistortion
	case ParamCenterSize:
		return &ps.CenterSize
	case ParamPreBlur:
		return &ps.PreBlur
	case ParamPostBlur:
		return &ps.PostBlur
	case ParamIridescence:
		return &ps.Iridescence
	}
	return nil
}

// Get returns the value of field p, or 0 for an unknown Param.
func (ps Params) Get(p Param) float64 {
	if f := ps.field(p); f != nil {
		return *f
	}
	return 0
}

// Set returns a copy of ps with field p set to v. Unknown Params leave ps unchanged.
func (ps Params) Set(p Param, v float64) Params {
	if f := ps.field(p); f != nil {
		*f = v
	}
	return ps
}

// ParamsPatch is a partial Params: nil fields are "not provided".
type ParamsPatch struct {
	Width            *float64 `json:"width,omitempty"`
	Height           *float64 `json:"height,omitempty"`
	CornerRadius     *float64 `json:"cornerRadius,omitempty"`
	DarknessOpacity  *float64 `json:"darknessOpacity,omitempty"`
	DarknessBlur     *float64 `json:"darknessBlur,omitempty"`
	LightnessOpacity *float64 `json:"lightnessOpacity,omitempty"`
	LightnessBlur    *float64 `json:"lightnessBlur,omitempty"`
	CenterDistortion *float64 `json:"centerDistortion,omitempty"`
	CenterSize       *float64 `json:"centerSize,omitempty"`
	PreBlur          *float64 `json:"preBlur,omitempty"`
	PostBlur         *float64 `json:"postBlur,omitempty"`
	Iridescence      *float64 `json:"iridescence,omitempty"`
}

// Apply returns base with every provided field of the patch overlaid.
func (pp ParamsPatch) Apply(base Params) Params {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.Width, pp.Width)
	set(&base.Height, pp.Height)
	set(&base.CornerRadius, pp.CornerRadius)
	set(&base.DarknessOpacity, pp.DarknessOpacity)
	set(&base.DarknessBlur, pp.DarknessBlur)
	set(&base.LightnessOpacity, pp.LightnessOpacity)
	set(&base.LightnessBlur, pp.LightnessBlur)
	set(&base.CenterDistortion, pp.CenterDistortion)
	set(&base.CenterSize, pp.CenterSize)
	set(&base.PreBlur, pp.PreBlur)
	set(&base.PostBlur, pp.PostBlur)
	set(&base.Iridescence, pp.Iridescence)
	return base
}

// UnmarshalJSON decodes the provided fields. Keys that are not parameter
// names are an error.
func (pp *ParamsPatch) UnmarshalJSON(data []byte) error {
	type plain ParamsPatch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode((*plain)(pp))
}

// Resolve fills every omitted field from DefaultParams.
func (pp ParamsPatch) Resolve() Params {
	return pp.Apply(DefaultParams())
}

// UnmarshalJSON decodes a partial object: keys that are absent keep the
// value ps already holds, so decoding into DefaultParams() yields defaults
// for anything omitted.
func (ps *Params) UnmarshalJSON(data []byte) error {
	var patch ParamsPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return err
	}
	*ps = patch.Apply(*ps)
	return nil
}

// Float returns a pointer to v, for building a ParamsPatch inline.
func Float(v float64) *float64 { return &v }
