package format

import (
	"strconv"
	"strings"
)

// Rupiah renders an amount as "Rp 1.750.000".
func Rupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "Rp " + thousands(amount)
}

func thousands(n int64) string {
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
