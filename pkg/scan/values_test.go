package scan

import "testing"

func TestIsDate(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"2020-01-31", true},
		{"2020/01/31", true},
		{"2020.01.31", true},
		{"31-01-2020", true},
		{"01/31/2020", true},
		{"12.31.99", true},
		{"31 12 05", true},
		{"2020-13-01", false},
		{"2020-01-32", false},
		{"13-13-2020", false},
		{"2020/1/1", false},
		{"abcd-ef-gh", false},
		{"20200131", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := isDate(tt.value); got != tt.want {
				t.Errorf("isDate(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestDateParts_MonthFirst(t *testing.T) {
	y, m, d, ok := dateParts("02/03/2021")
	if !ok || y != 2021 || m != 2 || d != 3 {
		t.Errorf("Expected 2021-02-03, got %d-%d-%d (ok=%v)", y, m, d, ok)
	}

	y, m, d, ok = dateParts("25/03/68")
	if !ok || y != 2068 || m != 3 || d != 25 {
		t.Errorf("Expected 2068-03-25, got %d-%d-%d (ok=%v)", y, m, d, ok)
	}
}

func TestEpochDays(t *testing.T) {
	tests := []struct {
		value string
		days  float64
	}{
		{"1970-01-01", 0},
		{"1970-01-02", 1},
		{"1969-12-31", -1},
		{"2000-03-01", 11017},
	}

	for _, tt := range tests {
		days, ok := epochDays(tt.value)
		if !ok || days != tt.days {
			t.Errorf("epochDays(%q) = %v (ok=%v), want %v", tt.value, days, ok, tt.days)
		}
		if got := dateFromEpochDays(days); got != tt.value {
			t.Errorf("dateFromEpochDays(%v) = %q, want %q", days, got, tt.value)
		}
	}
}

func TestIsNumber(t *testing.T) {
	tests := []struct {
		value  string
		number bool
		long   bool
	}{
		{"42", true, true},
		{"-7", true, true},
		{"+3", true, true},
		{"1.5", true, false},
		{".5", true, false},
		{"1e3", true, false},
		{"1,5", false, false},
		{"abc", false, false},
		{"99999999999999999999", true, false},
	}

	for _, tt := range tests {
		if got := isNumber(tt.value); got != tt.number {
			t.Errorf("isNumber(%q) = %v, want %v", tt.value, got, tt.number)
		}
		if got := isLong(tt.value); got != tt.long {
			t.Errorf("isLong(%q) = %v, want %v", tt.value, got, tt.long)
		}
	}
}

func TestWords(t *testing.T) {
	got := words("Hello, hello world_1! Ünïcode")
	want := []string{"hello", "world_1", "ünïcode"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}

func TestValueCounts_SortedAndKeepTopN(t *testing.T) {
	c := make(valueCounts)
	c.add("b", 2)
	c.add("a", 2)
	c.add("c", 5)
	c.add("d", 1)

	sorted := c.sorted()
	want := []string{"c", "a", "b", "d"}
	for i, v := range want {
		if sorted[i].Value != v {
			t.Fatalf("Expected order %v, got %v", want, sorted)
		}
	}

	c.keepTopN(2)
	if len(c) != 2 || c["c"] != 5 || c["a"] != 2 {
		t.Errorf("Expected c and a to remain, got %v", c)
	}
}
