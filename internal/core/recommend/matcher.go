package recommend

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// EdgeMatchThreshold 建立食材→食譜邊所需的最低配對品質
	EdgeMatchThreshold = 0.6
	// UsedMatchThreshold 沒有流量時，視為「已使用」所需的最低配對品質
	UsedMatchThreshold = 0.7
)

// IngredientMatch 模糊配對結果，Index 為 -1 表示沒有配對
type IngredientMatch struct {
	BestMatch string
	Index     int
	Quality   float64
}

// Matched 是否找到任何配對
func (m IngredientMatch) Matched() bool {
	return m.Index >= 0
}

var fillerWords = map[string]bool{
	"of":  true,
	"the": true,
	"and": true,
	"&":   true,
}

// NormalizeName 小寫、去除變音符號與標點、移除虛詞並壓縮空白
func NormalizeName(s string) string {
	s = strings.ToLower(stripLatinMarks(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '&':
			// 保留給虛詞判斷
			b.WriteString(" & ")
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if !fillerWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// stripLatinMarks 只移除拉丁字母上的變音符號，й、ё 等其他文字的字母保持不變
func stripLatinMarks(s string) string {
	var (
		b     strings.Builder
		latin bool
	)
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			if latin {
				continue
			}
		} else {
			latin = unicode.Is(unicode.Latin, r)
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// MatchIngredient 在食譜食材清單中找出與庫存名稱最相近的一項
func MatchIngredient(inventoryName string, recipeIngredients []string) IngredientMatch {
	best := IngredientMatch{Index: -1}

	name := NormalizeName(inventoryName)
	if name == "" {
		return best
	}

	for i, candidate := range recipeIngredients {
		q := matchQuality(name, NormalizeName(candidate))
		if q > best.Quality {
			best = IngredientMatch{BestMatch: candidate, Index: i, Quality: q}
		}
	}
	return best
}

// matchQuality 依完全相同、包含、字詞重疊的順序取第一個成立的品質
func matchQuality(name, candidate string) float64 {
	if candidate == "" {
		return 0
	}
	if name == candidate {
		return 1.0
	}

	if strings.Contains(candidate, name) || strings.Contains(name, candidate) {
		shorter, longer := utf8.RuneCountInString(name), utf8.RuneCountInString(candidate)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return 0.7 + 0.25*float64(shorter)/float64(longer)
	}

	best := 0.0
	for _, iw := range significantWords(name) {
		for _, rw := range significantWords(candidate) {
			if !wordsOverlap(iw, rw) {
				continue
			}
			q := math.Min(0.9, 0.6+0.05*float64(utf8.RuneCountInString(iw)))
			if q > best {
				best = q
			}
		}
	}
	return best
}

// 長度一律以字元計算
func significantWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

func wordsOverlap(a, b string) bool {
	if a == b {
		return true
	}
	if utf8.RuneCountInString(a) > 4 && strings.Contains(a, b) {
		return true
	}
	return utf8.RuneCountInString(b) > 4 && strings.Contains(b, a)
}
