package ringbuf

import "testing"

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := New(200); err == nil {
		t.Fatal("expected error for non power-of-two capacity")
	}
	if _, err := New(1); err == nil {
		t.Fatal("expected error for capacity of 1")
	}
}

func TestPushPopOrderPreserved(t *testing.T) {
	r, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	in := []byte{1, 2, 3, 4, 5}
	for _, b := range in {
		if !r.Push(b) {
			t.Fatalf("unexpected drop of byte %d", b)
		}
	}
	out := make([]byte, len(in))
	n := r.PopBulk(out)
	if n != len(in) {
		t.Fatalf("got %d bytes, want %d", n, len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("byte %d: got %d, want %d", i, out[i], in[i])
		}
	}
}

func TestFullRingDropsSilently(t *testing.T) {
	r, err := New(4) // one slot reserved, so 3 bytes fit
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !r.Push(byte(i)) {
			t.Fatalf("byte %d should have been stored", i)
		}
	}
	if r.Push(99) {
		t.Fatal("expected ring to be full and drop the byte")
	}

	out := make([]byte, 3)
	n := r.PopBulk(out)
	if n != 3 || out[0] != 0 || out[1] != 1 || out[2] != 2 {
		t.Fatalf("surviving bytes corrupted: %v (n=%d)", out, n)
	}
}

func TestBulkBurstRoundTrip(t *testing.T) {
	r, err := New(256)
	if err != nil {
		t.Fatal(err)
	}
	var sent []byte
	for i := 0; i < 30; i++ {
		b := byte(i * 7)
		sent = append(sent, b)
		if !r.Push(b) {
			t.Fatalf("unexpected drop at %d", i)
		}
	}
	got := make([]byte, len(sent))
	n := r.PopBulk(got)
	if n != len(sent) {
		t.Fatalf("got %d, want %d", n, len(sent))
	}
	for i := range sent {
		if got[i] != sent[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, got[i], sent[i])
		}
	}
}

func TestWrapAround(t *testing.T) {
	r, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	// Push/pop repeatedly to force the indices around the wrap point.
	for round := 0; round < 10; round++ {
		for i := 0; i < 3; i++ {
			r.Push(byte(round*3 + i))
		}
		out := make([]byte, 3)
		n := r.PopBulk(out)
		if n != 3 {
			t.Fatalf("round %d: got %d bytes", round, n)
		}
		for i := 0; i < 3; i++ {
			want := byte(round*3 + i)
			if out[i] != want {
				t.Fatalf("round %d byte %d: got %d want %d", round, i, out[i], want)
			}
		}
	}
}
