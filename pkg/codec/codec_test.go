package codec_test

import (
	"testing"

	"corestore/pkg/codec"
	"corestore/pkg/page"
)

func TestInt32CodecRoundTrip(t *testing.T) {
	var c codec.Int32Codec
	buf := make([]byte, c.Size())
	c.Encode(buf, -42)
	if got := c.Decode(buf); got != -42 {
		t.Errorf("Decode(Encode(-42)) = %d, want -42", got)
	}
}

func TestInt64CodecRoundTrip(t *testing.T) {
	var c codec.Int64Codec
	buf := make([]byte, c.Size())
	c.Encode(buf, 1<<40)
	if got := c.Decode(buf); got != 1<<40 {
		t.Errorf("Decode(Encode(1<<40)) = %d, want %d", got, int64(1)<<40)
	}
}

func TestPageIDCodecRoundTrip(t *testing.T) {
	var c codec.PageIDCodec
	buf := make([]byte, c.Size())
	c.Encode(buf, page.ID(17))
	if got := c.Decode(buf); got != 17 {
		t.Errorf("Decode(Encode(17)) = %d, want 17", got)
	}
	c.Encode(buf, page.InvalidID)
	if got := c.Decode(buf); got != page.InvalidID {
		t.Errorf("Decode(Encode(InvalidID)) = %d, want InvalidID", got)
	}
}

func TestRIDCodecRoundTrip(t *testing.T) {
	var c codec.RIDCodec
	buf := make([]byte, c.Size())
	want := codec.RID{PageID: 3, SlotNum: 9}
	c.Encode(buf, want)
	if got := c.Decode(buf); got != want {
		t.Errorf("Decode(Encode(%+v)) = %+v", want, got)
	}
}

func TestCompareInt32(t *testing.T) {
	cases := []struct {
		a, b int32
		want int
	}{
		{1, 2, -1},
		{2, 1, 1},
		{5, 5, 0},
	}
	for _, c := range cases {
		if got := codec.CompareInt32(c.a, c.b); (got < 0) != (c.want < 0) || (got > 0) != (c.want > 0) || (got == 0) != (c.want == 0) {
			t.Errorf("CompareInt32(%d, %d) = %d, want sign of %d", c.a, c.b, got, c.want)
		}
	}
}
