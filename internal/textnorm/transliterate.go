package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Transliterator converts Japanese text to a lower-case romaji
// approximation. Kanji readings come from a morphological analyzer; the
// dictionary is loaded on first use.
type Transliterator struct {
	once sync.Once
	tok  *tokenizer.Tokenizer
	err  error
}

var defaultTransliterator Transliterator

// Transliterate uses the package-level Transliterator.
func Transliterate(text string) string {
	return defaultTransliterator.Transliterate(text)
}

func (t *Transliterator) init() {
	t.once.Do(func() {
		t.tok, t.err = tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
		if t.err != nil {
			zap.L().Warn("textnorm: tokenizer unavailable, kanji will be dropped", zap.Error(t.err))
		}
	})
}

// Transliterate returns the romaji form of text with words separated by single
// spaces. It returns "" if nothing could be converted and never panics.
func (t *Transliterator) Transliterate(text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("textnorm: transliterate panic", zap.Any("panic", r))
			out = ""
		}
	}()

	text = norm.NFKC.String(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	t.init()
	var words []string
	if t.tok == nil {
		words = append(words, kanaToRomaji(text))
	} else {
		for _, tk := range t.tok.Tokenize(text) {
			words = append(words, tokenRomaji(tk.Surface, tk))
		}
	}

	return strings.Join(strings.Fields(strings.Join(words, " ")), " ")
}

func tokenRomaji(surface string, tk tokenizer.Token) string {
	if !HasJapanese(surface) {
		return kanaToRomaji(surface)
	}
	if isKana(surface) {
		return kanaToRomaji(surface)
	}
	if reading, ok := tk.Reading(); ok && reading != "" && reading != "*" {
		return kanaToRomaji(reading)
	}
	// Unknown word: keep whatever kana it has.
	return kanaToRomaji(surface)
}

func isKana(s string) bool {
	for _, r := range s {
		if !unicode.In(r, unicode.Hiragana, unicode.Katakana) && r != 'ー' {
			return false
		}
	}
	return true
}

// kanaToRomaji converts hiragana and katakana to modified Hepburn. ASCII
// letters and digits pass through lower-cased; other runes become spaces.
func kanaToRomaji(s string) string {
	rs := []rune(s)
	for i, r := range rs {
		if r >= 'ぁ' && r <= 'ゖ' {
			rs[i] = r + 0x60
		}
	}

	var b strings.Builder
	geminate := false
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		var syl string
		if i+1 < len(rs) {
			if d, ok := digraphs[string(rs[i:i+2])]; ok {
				syl = d
				i++
			}
		}
		if syl == "" {
			switch {
			case r == 'ッ':
				geminate = true
				continue
			case r == 'ー':
				// Long vowel mark repeats the preceding vowel.
				if out := b.String(); out != "" && strings.IndexByte("aeiou", out[len(out)-1]) >= 0 {
					b.WriteByte(out[len(out)-1])
				}
				geminate = false
				continue
			case kana[r] != "":
				syl = kana[r]
			case r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
				syl = strings.ToLower(string(r))
			default:
				geminate = false
				b.WriteByte(' ')
				continue
			}
		}
		if geminate {
			c := syl[0]
			if strings.IndexByte("aeioun", c) < 0 {
				if c == 'c' {
					c = 't'
				}
				b.WriteByte(c)
			}
			geminate = false
		}
		b.WriteString(syl)
	}
	return strings.TrimSpace(b.String())
}

var kana = map[rune]string{
	'ア': "a", 'イ': "i", 'ウ': "u", 'エ': "e", 'オ': "o",
	'カ': "ka", 'キ': "ki", 'ク': "ku", 'ケ': "ke", 'コ': "ko",
	'ガ': "ga", 'ギ': "gi", 'グ': "gu", 'ゲ': "ge", 'ゴ': "go",
	'サ': "sa", 'シ': "shi", 'ス': "su", 'セ': "se", 'ソ': "so",
	'ザ': "za", 'ジ': "ji", 'ズ': "zu", 'ゼ': "ze", 'ゾ': "zo",
	'タ': "ta", 'チ': "chi", 'ツ': "tsu", 'テ': "te", 'ト': "to",
	'ダ': "da", 'ヂ': "ji", 'ヅ': "zu", 'デ': "de", 'ド': "do",
	'ナ': "na", 'ニ': "ni", 'ヌ': "nu", 'ネ': "ne", 'ノ': "no",
	'ハ': "ha", 'ヒ': "hi", 'フ': "fu", 'ヘ': "he", 'ホ': "ho",
	'バ': "ba", 'ビ': "bi", 'ブ': "bu", 'ベ': "be", 'ボ': "bo",
	'パ': "pa", 'ピ': "pi", 'プ': "pu", 'ペ': "pe", 'ポ': "po",
	'マ': "ma", 'ミ': "mi", 'ム': "mu", 'メ': "me", 'モ': "mo",
	'ヤ': "ya", 'ユ': "yu", 'ヨ': "yo",
	'ラ': "ra", 'リ': "ri", 'ル': "ru", 'レ': "re", 'ロ': "ro",
	'ワ': "wa", 'ヰ': "i", 'ヱ': "e", 'ヲ': "o", 'ン': "n", 'ヴ': "vu",
	'ァ': "a", 'ィ': "i", 'ゥ': "u", 'ェ': "e", 'ォ': "o",
	'ャ': "ya", 'ュ': "yu", 'ョ': "yo", 'ヮ': "wa", 'ヵ': "ka", 'ヶ': "ke",
}

var digraphs = buildDigraphs()

func buildDigraphs() map[string]string {
	d := map[string]string{
		"シャ": "sha", "シュ": "shu", "ショ": "sho", "シェ": "she",
		"ジャ": "ja", "ジュ": "ju", "ジョ": "jo", "ジェ": "je",
		"チャ": "cha", "チュ": "chu", "チョ": "cho", "チェ": "che",
		"ファ": "fa", "フィ": "fi", "フェ": "fe", "フォ": "fo",
		"ティ": "ti", "ディ": "di", "デュ": "dyu", "トゥ": "tu", "ドゥ": "du",
		"ウィ": "wi", "ウェ": "we", "ウォ": "wo",
		"ヴァ": "va", "ヴィ": "vi", "ヴェ": "ve", "ヴォ": "vo",
	}
	for base, cons := range map[rune]string{
		'キ': "k", 'ギ': "g", 'ニ': "n", 'ヒ': "h", 'ビ': "b",
		'ピ': "p", 'ミ': "m", 'リ': "r",
	} {
		d[string([]rune{base, 'ャ'})] = cons + "ya"
		d[string([]rune{base, 'ュ'})] = cons + "yu"
		d[string([]rune{base, 'ョ'})] = cons + "yo"
	}
	return d
}
