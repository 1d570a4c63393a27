package omgo

import "testing"

func TestRandomSuffix(t *testing.T) {
	a := randomSuffix()
	b := randomSuffix()
	if a == "" || b == "" {
		t.Fatal("empty session suffix")
	}
	if a == b {
		t.Errorf("two launches got the same suffix %q", a)
	}
	for _, c := range a {
		if c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c == '.' {
			continue
		}
		t.Fatalf("suffix %q is not usable in a -z flag and file name", a)
	}
}
