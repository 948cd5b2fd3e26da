package ggshader

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggshader/shaders"
)

// BlendMode specifies how a paint's color combines with the destination.
// Colors are premultiplied.
type BlendMode uint8

// Porter-Duff compositing modes.
const (
	// BlendClear sets both color and alpha to zero.
	BlendClear BlendMode = iota
	// BlendSource replaces destination with source.
	BlendSource
	// BlendDestination keeps destination unchanged.
	BlendDestination
	// BlendSourceOver composites source over destination (default).
	BlendSourceOver
	// BlendDestinationOver composites destination over source.
	BlendDestinationOver
	// BlendSourceIn shows source where destination exists.
	BlendSourceIn
	// BlendDestinationIn shows destination where source exists.
	BlendDestinationIn
	// BlendSourceOut shows source where destination doesn't exist.
	BlendSourceOut
	// BlendDestinationOut shows destination where source doesn't exist.
	BlendDestinationOut
	// BlendSourceAtop composites source on top of destination.
	BlendSourceAtop
	// BlendDestinationAtop composites destination on top of source.
	BlendDestinationAtop
	// BlendXor shows non-overlapping regions.
	BlendXor
	// BlendPlus adds source and destination.
	BlendPlus
	// BlendModulate multiplies source and destination components.
	BlendModulate
)

// Advanced separable and non-separable modes.
const (
	// BlendMultiply: Result = S * D.
	BlendMultiply BlendMode = iota + 14
	// BlendScreen: Result = S + D - S*D.
	BlendScreen
	// BlendOverlay: HardLight with source and destination swapped.
	BlendOverlay
	// BlendDarken: min(S, D).
	BlendDarken
	// BlendLighten: max(S, D).
	BlendLighten
	// BlendColorDodge brightens destination to reflect source.
	BlendColorDodge
	// BlendColorBurn darkens destination to reflect source.
	BlendColorBurn
	// BlendHardLight multiplies or screens depending on source.
	BlendHardLight
	// BlendSoftLight darkens or lightens depending on source.
	BlendSoftLight
	// BlendDifference: |S - D|.
	BlendDifference
	// BlendExclusion: S + D - 2*S*D.
	BlendExclusion
	// BlendHue uses source hue with destination saturation and luminosity.
	BlendHue
	// BlendSaturation uses source saturation with destination hue and luminosity.
	BlendSaturation
	// BlendColor uses source hue and saturation with destination luminosity.
	BlendColor
	// BlendLuminosity uses source luminosity with destination hue and saturation.
	BlendLuminosity

	blendModeCount
)

var blendModeNames = [blendModeCount]string{
	"clear", "source", "destination", "source-over", "destination-over",
	"source-in", "destination-in", "source-out", "destination-out",
	"source-atop", "destination-atop", "xor", "plus", "modulate",
	"multiply", "screen", "overlay", "darken", "lighten",
	"color-dodge", "color-burn", "hard-light", "soft-light",
	"difference", "exclusion", "hue", "saturation", "color", "luminosity",
}

// String returns the mode's name.
func (m BlendMode) String() string {
	if m < blendModeCount {
		return blendModeNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(m))
}

// IsValid reports whether m is a known mode.
func (m BlendMode) IsValid() bool { return m < blendModeCount }

func errInvalidMode(m BlendMode) error {
	return fmt.Errorf("%w: %d", ErrInvalidBlendMode, uint8(m))
}

// ParseBlendMode returns the mode named s, as printed by String.
func ParseBlendMode(s string) (BlendMode, error) {
	for m := range blendModeCount {
		if blendModeNames[m] == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBlendMode, s)
}

// coeffs are the hardware blend factors of the coefficient modes. Modes
// missing from the table need the shader-based blender.
var coeffs = map[BlendMode][2]gputypes.BlendFactor{
	BlendClear:           {gputypes.BlendFactorZero, gputypes.BlendFactorZero},
	BlendSource:          {gputypes.BlendFactorOne, gputypes.BlendFactorZero},
	BlendDestination:     {gputypes.BlendFactorZero, gputypes.BlendFactorOne},
	BlendSourceOver:      {gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha},
	BlendDestinationOver: {gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorOne},
	BlendSourceIn:        {gputypes.BlendFactorDstAlpha, gputypes.BlendFactorZero},
	BlendDestinationIn:   {gputypes.BlendFactorZero, gputypes.BlendFactorSrcAlpha},
	BlendSourceOut:       {gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorZero},
	BlendDestinationOut:  {gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrcAlpha},
	BlendSourceAtop:      {gputypes.BlendFactorDstAlpha, gputypes.BlendFactorOneMinusSrcAlpha},
	BlendDestinationAtop: {gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorSrcAlpha},
	BlendXor:             {gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorOneMinusSrcAlpha},
	BlendPlus:            {gputypes.BlendFactorOne, gputypes.BlendFactorOne},
	BlendModulate:        {gputypes.BlendFactorZero, gputypes.BlendFactorSrc},
	BlendScreen:          {gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrc},
}

// FixedFunctionBlendInfo returns the hardware blend state of m, or false if
// m needs the shader-based blender.
func FixedFunctionBlendInfo(m BlendMode) (shaders.BlendInfo, bool) {
	f, ok := coeffs[m]
	if !ok {
		return shaders.BlendInfo{}, false
	}
	c := gputypes.BlendComponent{
		SrcFactor: f[0],
		DstFactor: f[1],
		Operation: gputypes.BlendOperationAdd,
	}
	return shaders.BlendInfo{State: gputypes.BlendState{Color: c, Alpha: c}}, true
}

// addToKey appends the blender block of m and records its blend info.
func (m BlendMode) addToKey(b *shaders.KeyBuilder, u *UniformData) error {
	if !m.IsValid() {
		return errInvalidMode(m)
	}
	if info, ok := FixedFunctionBlendInfo(m); ok {
		b.BeginBlock(shaders.BuiltInFixedFunctionBlender)
		b.AddBytes(byte(m))
		b.EndBlock()
		b.SetBlendInfo(info)
		return nil
	}
	b.BeginBlock(shaders.BuiltInShaderBasedBlender)
	u.WriteInt(int32(m))
	b.EndBlock()
	info := shaders.ReplaceBlendInfo
	info.ShaderBlends = true
	b.SetBlendInfo(info)
	return nil
}
