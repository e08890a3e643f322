package cast

import (
	"testing"
)

func TestIntCaster(t *testing.T) {
	c := NewIntCaster()

	raw, err := c.Encode(-42)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(raw) != "-42" {
		t.Errorf("expected decimal encoding, got %q", raw)
	}

	v, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v != -42 {
		t.Errorf("expected -42, got %d", v)
	}

	if _, err := c.Decode([]byte("not-a-number")); err == nil {
		t.Error("expected error for malformed input, got nil")
	}
}

func TestStringCaster(t *testing.T) {
	c := NewStringCaster()

	raw, err := c.Encode("hello world")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	v, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v != "hello world" {
		t.Errorf("expected round trip, got %q", v)
	}
}

func TestJSONCaster(t *testing.T) {
	type payload struct {
		ID   int      `json:"id"`
		Tags []string `json:"tags"`
	}

	c := NewJSONCaster[payload]()

	in := payload{ID: 7, Tags: []string{"a", "b"}}
	raw, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.ID != in.ID || len(out.Tags) != 2 || out.Tags[0] != "a" {
		t.Errorf("expected %+v, got %+v", in, out)
	}

	if _, err := c.Decode([]byte("{broken")); err == nil {
		t.Error("expected error for malformed json, got nil")
	}
}

func TestJSONCasterEncodingIsDeterministic(t *testing.T) {
	type pair struct {
		A int `json:"a"`
		B int `json:"b"`
	}

	c := NewJSONCaster[pair]()

	// the encoded bytes double as the set member identity, so identical
	// values have to encode identically
	first, err := c.Encode(pair{A: 1, B: 2})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := c.Encode(pair{A: 1, B: 2})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("encodings differ: %q vs %q", first, second)
	}
}
