package media

import "testing"

func TestConcatList(t *testing.T) {
	got := ConcatList([]string{"/tmp/a.mp3", "/tmp/b.mp3"})
	want := "file '/tmp/a.mp3'\nfile '/tmp/b.mp3'\n"
	if got != want {
		t.Fatalf("ConcatList = %q; want %q", got, want)
	}
}

func TestConcatListEscapesQuotes(t *testing.T) {
	got := ConcatList([]string{"/tmp/it's.mp3"})
	want := `file '/tmp/it'\''s.mp3'` + "\n"
	if got != want {
		t.Fatalf("ConcatList = %q; want %q", got, want)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{4, "4.000"},
		{0.5, "0.500"},
		{10.125, "10.125"},
	}
	for _, c := range cases {
		if got := formatSeconds(c.in); got != c.want {
			t.Fatalf("formatSeconds(%v) = %q; want %q", c.in, got, c.want)
		}
	}
}
