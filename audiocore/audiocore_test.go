package audiocore

import (
	"bytes"
	"testing"
)

func TestNewRawSample(t *testing.T) {
	buf := []byte{0x80, 0x81, 0x7f, 0x00}
	s := NewRawSample(buf, 22050, 8, 2, false)

	if s.SampleRate() != 22050 {
		t.Errorf("sample rate %d, want 22050", s.SampleRate())
	}
	if s.BitsPerSample() != 8 {
		t.Errorf("bits per sample %d, want 8", s.BitsPerSample())
	}
	if s.ChannelCount() != 2 {
		t.Errorf("channel count %d, want 2", s.ChannelCount())
	}
	if s.Signed() {
		t.Error("unsigned sample reports signed")
	}
	if !bytes.Equal(s.Buffer(), buf) {
		t.Errorf("buffer %v, want %v", s.Buffer(), buf)
	}
}

func TestNewRawSampleInt16(t *testing.T) {
	s := NewRawSampleInt16([]int16{0x0102, -2}, 44100, 1)

	if !s.Signed() || s.BitsPerSample() != 16 || s.ChannelCount() != 1 {
		t.Errorf("wrong format: signed=%v bits=%d channels=%d",
			s.Signed(), s.BitsPerSample(), s.ChannelCount())
	}
	want := []byte{0x02, 0x01, 0xfe, 0xff}
	if !bytes.Equal(s.Buffer(), want) {
		t.Errorf("buffer %v, want little-endian %v", s.Buffer(), want)
	}
}

func TestSetSampleRate(t *testing.T) {
	s := NewRawSampleInt16(make([]int16, 4), 44100, 1)
	s.SetSampleRate(8000)
	if s.SampleRate() != 8000 {
		t.Errorf("sample rate %d, want 8000", s.SampleRate())
	}
}
