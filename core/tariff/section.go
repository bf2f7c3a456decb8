package tariff

import "strconv"

// sectionBounds maps the last chapter of each section to its numeral.
// Chapters are 01..97; chapter 77 is reserved and falls inside section XV.
var sectionBounds = []struct {
	last    int
	numeral string
}{
	{5, "I"},
	{14, "II"},
	{15, "III"},
	{24, "IV"},
	{27, "V"},
	{38, "VI"},
	{40, "VII"},
	{43, "VIII"},
	{46, "IX"},
	{49, "X"},
	{63, "XI"},
	{67, "XII"},
	{70, "XIII"},
	{71, "XIV"},
	{83, "XV"},
	{85, "XVI"},
	{89, "XVII"},
	{92, "XVIII"},
	{93, "XIX"},
	{96, "XX"},
	{97, "XXI"},
}

// SectionOf returns the section numeral for a code's chapter (first two digits),
// or "" if the chapter is outside 01..97.
func SectionOf(code string) string {
	n := Normalize(code)
	if len(n) < 2 {
		return ""
	}
	chapter, err := strconv.Atoi(n[:2])
	if err != nil || chapter < 1 {
		return ""
	}
	for _, b := range sectionBounds {
		if chapter <= b.last {
			return b.numeral
		}
	}
	return ""
}
