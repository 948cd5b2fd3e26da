package shaders

import "github.com/gogpu/gputypes"

// BlendInfo is the fixed-function blend state a paint's pipeline needs.
type BlendInfo struct {
	// State is the color target blend state.
	State gputypes.BlendState

	// ShaderBlends is set when the fragment shader computes the blended
	// color itself. The fixed-function stage then replaces the destination.
	ShaderBlends bool
}

// ReplaceBlendInfo writes the shader's output over the destination.
var ReplaceBlendInfo = BlendInfo{State: gputypes.BlendStateReplace()}

// IsReplace reports whether the blend state ignores the destination.
func (b BlendInfo) IsReplace() bool {
	return b.State == ReplaceBlendInfo.State
}

// BlendState returns the state to set on the color target, or nil when the
// destination is replaced and blending can be disabled.
func (b BlendInfo) BlendState() *gputypes.BlendState {
	if b.IsReplace() {
		return nil
	}
	s := b.State
	return &s
}
