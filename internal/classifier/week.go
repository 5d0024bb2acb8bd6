package classifier

import "time"

// Week returns the BirdNET week (1..48) for t. Each month holds four weeks;
// days 29 through 31 fall into the month's fourth week.
func Week(t time.Time) int {
	weekInMonth := min((t.Day()-1)/7, 3)
	return (int(t.Month())-1)*4 + weekInMonth + 1
}

// ValidWeek reports whether w is a BirdNET week number.
func ValidWeek(w int) bool {
	return w >= 1 && w <= 48
}
