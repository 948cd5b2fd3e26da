package shaders

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestKeyBuilderLayout(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	b.BeginBlock(BuiltInLocalMatrixShader)
	block(b, BuiltInSolidColorShader)
	b.EndBlock()
	b.BeginBlock(BuiltInFixedFunctionBlender)
	b.AddBytes(3)
	b.EndBlock()

	key, err := b.LockAsKey()
	if err != nil {
		t.Fatalf("LockAsKey: %v", err)
	}
	data := key.Bytes()
	if len(data) != 24+13 {
		t.Fatalf("key is %d bytes, want 37", len(data))
	}

	tests := []struct {
		off         int
		id          SnippetID
		size        uint32
		payload     uint16
		numChildren byte
	}{
		{0, BuiltInLocalMatrixShader, 24, 0, 1},
		{12, BuiltInSolidColorShader, 12, 0, 0},
		{24, BuiltInFixedFunctionBlender, 13, 1, 0},
	}
	for _, tt := range tests {
		h := data[tt.off:]
		if got := SnippetID(binary.LittleEndian.Uint32(h)); got != tt.id {
			t.Errorf("offset %d: id = %d, want %d", tt.off, got, tt.id)
		}
		if got := binary.LittleEndian.Uint32(h[4:]); got != tt.size {
			t.Errorf("offset %d: size = %d, want %d", tt.off, got, tt.size)
		}
		if got := binary.LittleEndian.Uint16(h[8:]); got != tt.payload {
			t.Errorf("offset %d: payload = %d, want %d", tt.off, got, tt.payload)
		}
		if h[10] != tt.numChildren || h[11] != 0 {
			t.Errorf("offset %d: children/reserved = %d/%d, want %d/0", tt.off, h[10], h[11], tt.numChildren)
		}
	}
	if data[36] != 3 {
		t.Errorf("blend mode payload = %d, want 3", data[36])
	}
}

func TestKeyBuilderErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *KeyBuilder)
		want  error
	}{
		{"unknown snippet", func(b *KeyBuilder) {
			block(b, SnippetID(9999))
		}, ErrUnknownSnippet},
		{"invalid snippet", func(b *KeyBuilder) {
			block(b, InvalidSnippetID)
		}, ErrUnknownSnippet},
		{"end without begin", func(b *KeyBuilder) {
			b.EndBlock()
		}, ErrUnbalanced},
		{"unclosed block", func(b *KeyBuilder) {
			b.BeginBlock(BuiltInSolidColorShader)
		}, ErrUnbalanced},
		{"payload outside block", func(b *KeyBuilder) {
			b.AddBytes(1)
		}, ErrUnbalanced},
		{"empty", func(b *KeyBuilder) {}, ErrEmptyKey},
		{"missing payload", func(b *KeyBuilder) {
			block(b, BuiltInFixedFunctionBlender)
		}, ErrPayloadMismatch},
		{"wrong payload type", func(b *KeyBuilder) {
			b.BeginBlock(BuiltInFixedFunctionBlender)
			b.AddInts(3)
			b.EndBlock()
		}, ErrPayloadMismatch},
		{"wrong payload count", func(b *KeyBuilder) {
			b.BeginBlock(BuiltInFixedFunctionBlender)
			b.AddBytes(3, 4)
			b.EndBlock()
		}, ErrPayloadMismatch},
		{"unexpected payload", func(b *KeyBuilder) {
			b.BeginBlock(BuiltInSolidColorShader)
			b.AddBytes(1)
			b.EndBlock()
		}, ErrPayloadMismatch},
		{"too few children", func(b *KeyBuilder) {
			b.BeginBlock(BuiltInBlendShader)
			block(b, BuiltInSolidColorShader)
			b.EndBlock()
		}, ErrChildCount},
		{"too many children", func(b *KeyBuilder) {
			b.BeginBlock(BuiltInLocalMatrixShader)
			block(b, BuiltInSolidColorShader)
			block(b, BuiltInSolidColorShader)
			b.EndBlock()
		}, ErrChildCount},
		{"child of leaf", func(b *KeyBuilder) {
			b.BeginBlock(BuiltInSolidColorShader)
			block(b, BuiltInSolidColorShader)
			b.EndBlock()
		}, ErrChildCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewKeyBuilder(NewDictionary())
			tt.build(b)
			_, err := b.LockAsKey()
			if !errors.Is(err, tt.want) {
				t.Errorf("LockAsKey error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestKeyBuilderStickyError(t *testing.T) {
	b := NewKeyBuilder(NewDictionary())
	b.EndBlock()
	first := b.Err()
	if !errors.Is(first, ErrUnbalanced) {
		t.Fatalf("Err() = %v, want ErrUnbalanced", first)
	}
	block(b, BuiltInSolidColorShader)
	if b.Err() != first {
		t.Errorf("error replaced by %v", b.Err())
	}

	b.Reset()
	if b.Err() != nil {
		t.Fatalf("Err() after Reset = %v", b.Err())
	}
	block(b, BuiltInSolidColorShader)
	if _, err := b.LockAsKey(); err != nil {
		t.Errorf("LockAsKey after Reset: %v", err)
	}
}

func TestKeyBuilderLocked(t *testing.T) {
	b := NewKeyBuilder(NewDictionary())
	block(b, BuiltInSolidColorShader)
	k1, err := b.LockAsKey()
	if err != nil {
		t.Fatalf("LockAsKey: %v", err)
	}
	k2, err := b.LockAsKey()
	if err != nil || !k1.Equal(k2) {
		t.Fatalf("second LockAsKey = %v, %v; want the same key", k2, err)
	}

	block(b, BuiltInSolidColorShader)
	if _, err := b.LockAsKey(); !errors.Is(err, ErrLocked) {
		t.Errorf("write after lock: error = %v, want ErrLocked", err)
	}
}

func TestKeyBuilderBlendInfo(t *testing.T) {
	b := NewKeyBuilder(NewDictionary())
	if !b.BlendInfo().IsReplace() {
		t.Errorf("default blend info is not replace: %+v", b.BlendInfo())
	}
	info := BlendInfo{ShaderBlends: true}
	b.SetBlendInfo(info)
	if b.BlendInfo() != info {
		t.Errorf("BlendInfo() = %+v, want %+v", b.BlendInfo(), info)
	}
	b.Reset()
	if !b.BlendInfo().IsReplace() {
		t.Errorf("blend info not reset")
	}
}

func TestNewShaderInfoRejectsMalformedKeys(t *testing.T) {
	d := NewDictionary()
	header := func(id SnippetID, size uint32, payload uint16, children byte) []byte {
		h := make([]byte, blockHeaderSize)
		putHeader(h, blockHeader{id: id, size: size, payloadSize: payload, numChildren: children})
		return h
	}

	reserved := header(BuiltInSolidColorShader, 12, 0, 0)
	reserved[11] = 1

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrEmptyKey},
		{"truncated", header(BuiltInSolidColorShader, 12, 0, 0)[:8], ErrMalformedKey},
		{"reserved byte", reserved, ErrMalformedKey},
		{"size past end", header(BuiltInSolidColorShader, 40, 0, 0), ErrMalformedKey},
		{"unknown snippet", header(777, 12, 0, 0), ErrUnknownSnippet},
		{"child count", append(header(BuiltInSolidColorShader, 24, 0, 1), header(BuiltInSolidColorShader, 12, 0, 0)...), ErrChildCount},
		{"payload size", append(header(BuiltInFixedFunctionBlender, 14, 2, 0), 0, 0), ErrPayloadMismatch},
		{"missing child", header(BuiltInLocalMatrixShader, 12, 0, 1), ErrMalformedKey},
		{"trailing bytes in block", append(header(BuiltInSolidColorShader, 16, 0, 0), 0, 0, 0, 0), ErrMalformedKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShaderInfo(d, KeyFromBytes(tt.data), ReplaceBlendInfo)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewShaderInfo error = %v, want %v", err, tt.want)
			}
		})
	}
}
