package utils

import (
	"fmt"
	"math"
	"strings"
)

func RoundTo(n float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(n*pow) / pow
}

// FormatPrice печатает цену без хвостовых нулей: 10 -> "10", 9.5 -> "9.50"
func FormatPrice(price float64, currency string) string {
	rounded := RoundTo(price, 2)
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%.0f %s", rounded, currency)
	}
	return fmt.Sprintf("%.2f %s", rounded, currency)
}

// EscapeHTML экранирует текст для parse_mode=HTML.
func EscapeHTML(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}
