package buffer

import "testing"

func TestNewZeroFilled(t *testing.T) {
	b := New(2, 8)
	if b.NumChannels() != 2 {
		t.Fatalf("NumChannels() = %d, want 2", b.NumChannels())
	}
	if b.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", b.Len())
	}
	for c, ch := range b.Channels() {
		for i, v := range ch {
			if v != 0 {
				t.Fatalf("channel %d sample %d = %v, want 0", c, i, v)
			}
		}
	}
}

func TestNewNegativeArguments(t *testing.T) {
	b := New(-1, -1)
	if b.NumChannels() != 0 || b.Len() != 0 {
		t.Fatalf("New(-1, -1) = %d channels x %d, want empty", b.NumChannels(), b.Len())
	}
}

func TestFromChannelsSharesMemory(t *testing.T) {
	s := [][]float64{{1, 2, 3}, {4, 5}}
	b := FromChannels(s)
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want shortest channel length 2", b.Len())
	}
	b.Channel(0)[0] = 99
	if s[0][0] != 99 {
		t.Fatal("FromChannels should share underlying memory")
	}
}

func TestResizeKeepsDataAndZeroesNewSamples(t *testing.T) {
	b := New(1, 4)
	copy(b.Channel(0), []float64{1, 2, 3, 4})

	b.Resize(1, 2)
	b.Resize(2, 6)

	want := []float64{1, 2, 0, 0, 0, 0}
	for i, v := range b.Channel(0) {
		if v != want[i] {
			t.Fatalf("channel 0 = %v, want %v", b.Channel(0), want)
		}
	}
	for i, v := range b.Channel(1) {
		if v != 0 {
			t.Fatalf("channel 1 sample %d = %v, want 0", i, v)
		}
	}
}

func TestWriteAt(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		n      int
		want   int
		first  []float64
	}{
		{name: "inside", offset: 1, n: 2, want: 2, first: []float64{0, 1, 2, 0, 0}},
		{name: "truncated at end", offset: 3, n: 3, want: 2, first: []float64{0, 0, 0, 1, 2}},
		{name: "limited by source", offset: 0, n: 10, want: 3, first: []float64{1, 2, 3, 0, 0}},
		{name: "offset past end", offset: 5, n: 1, want: 0, first: []float64{0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(2, 5)
			src := [][]float64{{1, 2, 3}, {-1, -2, -3}}
			if got := b.WriteAt(tt.offset, src, tt.n); got != tt.want {
				t.Fatalf("WriteAt() = %d, want %d", got, tt.want)
			}
			for i, v := range b.Channel(0) {
				if v != tt.first[i] {
					t.Fatalf("channel 0 = %v, want %v", b.Channel(0), tt.first)
				}
			}
		})
	}
}

func TestWriteAtIgnoresExtraChannels(t *testing.T) {
	b := New(1, 2)
	b.WriteAt(0, [][]float64{{1, 1}, {2, 2}, {3, 3}}, 2)
	if b.Channel(0)[1] != 1 {
		t.Fatalf("channel 0 = %v, want [1 1]", b.Channel(0))
	}
}

func TestZeroRange(t *testing.T) {
	b := New(2, 4)
	for _, ch := range b.Channels() {
		copy(ch, []float64{1, 1, 1, 1})
	}
	b.ZeroRange(-3, 2)
	b.ZeroRange(3, 100)
	for _, ch := range b.Channels() {
		if ch[0] != 0 || ch[1] != 0 || ch[2] != 1 || ch[3] != 0 {
			t.Fatalf("channel = %v, want [0 0 1 0]", ch)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := New(1, 3)
	b.Channel(0)[0] = 5
	c := b.Clone()
	b.Channel(0)[0] = 7
	if c.Channel(0)[0] != 5 {
		t.Fatalf("clone sample = %v, want 5", c.Channel(0)[0])
	}
}

func TestViewsDoNotAllocate(t *testing.T) {
	src := [][]float64{make([]float64, 64), make([]float64, 64)}
	dst := make([][]float64, 0, 2)

	allocs := testing.AllocsPerRun(100, func() {
		dst = Views(dst, src, 8, 40)
	})
	if allocs != 0 {
		t.Fatalf("Views allocated %v times per run, want 0", allocs)
	}
	if len(dst) != 2 || len(dst[0]) != 32 {
		t.Fatalf("views = %d channels x %d, want 2 x 32", len(dst), len(dst[0]))
	}
}

func TestViewsClampBounds(t *testing.T) {
	src := [][]float64{{1, 2, 3}}
	v := Views(nil, src, 2, 10)
	if len(v[0]) != 1 || v[0][0] != 3 {
		t.Fatalf("view = %v, want [3]", v[0])
	}
}
