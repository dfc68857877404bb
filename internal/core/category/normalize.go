package category

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"strings"
)

// PathSeparator разделяет сегменты ключа пути. В названиях категорий не встречается.
const PathSeparator = "\x1f"

var yoFold = strings.NewReplacer("ё", "е", "Ё", "е")

// NormalizeName приводит название к виду для сравнения: NFC, нижний регистр,
// схлопнутые пробелы, "ё" заменена на "е".
func NormalizeName(name string) string {
	s := norm.NFC.String(name)
	s = yoFold.Replace(s)
	// Caser хранит состояние, поэтому создается на каждый вызов.
	s = cases.Lower(language.Russian).String(s)
	return strings.Join(strings.Fields(s), " ")
}

// CleanPath обрезает пробелы и выбрасывает пустые сегменты.
func CleanPath(path []string) []string {
	var out []string
	for _, segment := range path {
		if segment = strings.TrimSpace(segment); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

// PathKey ключ кэша поставщика для сырого пути. Пустой путь дает пустой ключ.
func PathKey(path []string) string {
	cleaned := CleanPath(path)
	keys := make([]string, 0, len(cleaned))
	for _, segment := range cleaned {
		if key := NormalizeName(segment); key != "" {
			keys = append(keys, key)
		}
	}
	return strings.Join(keys, PathSeparator)
}
