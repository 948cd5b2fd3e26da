// Package desc decodes paint description files and builds the paints they
// describe.
//
// A description names runtime effects and paints:
//
//	effects:
//	  - name: tint
//	    source: |
//	      fn main(coords: vec2<f32>, color: vec4<f32>) -> vec4<f32> {
//	          return color * tint;
//	      }
//	    uniforms:
//	      - {name: tint, type: float4}
//	paints:
//	  - name: sunset
//	    blend: multiply
//	    shader:
//	      linear:
//	        start: [0, 0]
//	        end: [0, 100]
//	        stops:
//	          - {offset: 0, color: "#ff8000"}
//	          - {offset: 1, color: "#400080"}
//
// Exactly one shader kind is set per shader node. Any node may carry a
// six element affine matrix [a, b, c, d, e, f], which wraps it in a local
// matrix shader.
package desc

import "errors"

// ErrInvalid is returned for descriptions that decode but do not describe a
// paint.
var ErrInvalid = errors.New("desc: invalid description")

// File is a decoded description file.
type File struct {
	Effects []Effect `yaml:"effects" json:"effects"`
	Paints  []Paint  `yaml:"paints" json:"paints"`
}

// Effect declares a runtime effect.
type Effect struct {
	Name     string    `yaml:"name" json:"name"`
	Source   string    `yaml:"source" json:"source"`
	Uniforms []Uniform `yaml:"uniforms" json:"uniforms"`
}

// Uniform declares one uniform of an effect. Count > 0 declares an array.
type Uniform struct {
	Name  string `yaml:"name" json:"name"`
	Type  string `yaml:"type" json:"type"`
	Count int    `yaml:"count" json:"count"`
}

// Paint describes one paint. Blend defaults to source-over.
type Paint struct {
	Name   string  `yaml:"name" json:"name"`
	Blend  string  `yaml:"blend" json:"blend"`
	Shader *Shader `yaml:"shader" json:"shader"`
}

// Shader is one node of a shader tree.
type Shader struct {
	Solid   string    `yaml:"solid" json:"solid"`
	Linear  *Gradient `yaml:"linear" json:"linear"`
	Radial  *Gradient `yaml:"radial" json:"radial"`
	Sweep   *Gradient `yaml:"sweep" json:"sweep"`
	Conical *Gradient `yaml:"conical" json:"conical"`
	Image   *Image    `yaml:"image" json:"image"`
	Blend   *Blend    `yaml:"blend" json:"blend"`
	Runtime *Runtime  `yaml:"runtime" json:"runtime"`
	Matrix  []float64 `yaml:"matrix" json:"matrix"`
}

// Gradient describes any of the gradient kinds; each kind reads the
// geometry fields it needs. Angles are in degrees.
type Gradient struct {
	Start       [2]float64 `yaml:"start" json:"start"`
	End         [2]float64 `yaml:"end" json:"end"`
	Center      [2]float64 `yaml:"center" json:"center"`
	Radius      float64    `yaml:"radius" json:"radius"`
	StartRadius float64    `yaml:"startRadius" json:"startRadius"`
	EndRadius   float64    `yaml:"endRadius" json:"endRadius"`
	StartAngle  float64    `yaml:"startAngle" json:"startAngle"`
	EndAngle    *float64   `yaml:"endAngle" json:"endAngle"`
	Stops       []Stop     `yaml:"stops" json:"stops"`
	Tile        string     `yaml:"tile" json:"tile"`
}

// Stop is a gradient color stop; Color is a hex string.
type Stop struct {
	Offset float64 `yaml:"offset" json:"offset"`
	Color  string  `yaml:"color" json:"color"`
}

// Image describes a sampled image of the given size. Subset is
// [minX, minY, maxX, maxY]; omitted means the whole image.
type Image struct {
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Subset []int  `yaml:"subset" json:"subset"`
	TileX  string `yaml:"tileX" json:"tileX"`
	TileY  string `yaml:"tileY" json:"tileY"`
}

// Blend combines two child shaders.
type Blend struct {
	Mode string  `yaml:"mode" json:"mode"`
	Dst  *Shader `yaml:"dst" json:"dst"`
	Src  *Shader `yaml:"src" json:"src"`
}

// Runtime instantiates a declared effect.
type Runtime struct {
	Effect   string               `yaml:"effect" json:"effect"`
	Uniforms map[string][]float32 `yaml:"uniforms" json:"uniforms"`
}
