package platform

import "testing"

func TestStatic(t *testing.T) {
	native := NewStatic(ModeNative)
	if !native.Is(Hybrid) || !native.Is(Native) || native.Is(Web) {
		t.Errorf("native caps wrong: %+v", native.caps)
	}
	browser := NewStatic(ModeBrowser)
	if browser.Is(Hybrid) || !browser.Is(Web) {
		t.Errorf("browser caps wrong: %+v", browser.caps)
	}
	if NewStatic("").Is(Hybrid) {
		t.Error("empty mode should not be hybrid")
	}
}

func TestConvertFileSrc(t *testing.T) {
	c := NewConverter("http://localhost:8080/")

	cases := []struct {
		in, want string
	}{
		{"file:///var/lib/darkroom/data/1700000000000jpeg", "http://localhost:8080/_app_file_/var/lib/darkroom/data/1700000000000jpeg"},
		{"file:///tmp/with%20space", "http://localhost:8080/_app_file_/tmp/with%20space"},
		{"blob:http://localhost/abc", "blob:http://localhost/abc"},
		{"1700000000000jpeg", "1700000000000jpeg"},
	}
	for _, tc := range cases {
		if got := c.ConvertFileSrc(tc.in); got != tc.want {
			t.Errorf("ConvertFileSrc(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
