package property

import "strings"

// FormatAddress renders "street number[suffix], settlement, municipality"
// from the optional address fields. The settlement is dropped when it
// repeats the municipality; street-less rows fall back to the settlement
// and municipality alone.
func FormatAddress(ulica, hisnaStevilka, dodatekHs, naselje, obcina *string) string {
	val := func(p *string) string {
		if p == nil {
			return ""
		}
		return strings.TrimSpace(*p)
	}

	var parts []string

	street := val(ulica)
	if street != "" {
		if num := val(hisnaStevilka); num != "" {
			street += " " + num + val(dodatekHs)
		}
		parts = append(parts, street)
	}

	settlement := val(naselje)
	municipality := val(obcina)
	if settlement != "" && !strings.EqualFold(settlement, municipality) {
		parts = append(parts, settlement)
	}
	if municipality != "" {
		parts = append(parts, municipality)
	}

	return strings.Join(parts, ", ")
}
