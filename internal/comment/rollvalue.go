package comment

import "strconv"

// RollValue is the number of captures a reply number grants, based on the
// repeated digits at its end.
func RollValue(num int) int {
	s := strconv.Itoa(num)

	r1 := runLength(s, len(s)-1)
	r2 := runLength(s, len(s)-1-r1)

	switch {
	case r1 == 3 && r2 >= 2, r1 == 2 && r2 >= 3:
		return 4
	case r1 == 2 && r2 == 2:
		return 2
	}

	switch r1 {
	case 1:
		return 0
	case 2:
		return 1
	case 3:
		return 3
	case 4:
		return 5
	default:
		return 8
	}
}

// runLength counts equal bytes ending at index end.
func runLength(s string, end int) int {
	if end < 0 {
		return 0
	}
	n := 1
	for i := end - 1; i >= 0 && s[i] == s[end]; i-- {
		n++
	}
	return n
}
