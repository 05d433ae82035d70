package region

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// areaCodes maps unambiguous fixed-line area codes to prefectures. Codes
// shared across prefecture lines (042, 055, 076, 088, ...) are left out.
var areaCodes = map[string]string{
	"011": "北海道", "0123": "北海道", "0138": "北海道", "0144": "北海道", "0166": "北海道",
	"017": "青森県", "0172": "青森県", "0178": "青森県",
	"019": "岩手県", "0197": "岩手県",
	"022": "宮城県",
	"018": "秋田県",
	"023": "山形県",
	"024": "福島県",
	"029": "茨城県",
	"028": "栃木県",
	"027": "群馬県",
	"048": "埼玉県", "049": "埼玉県",
	"043": "千葉県", "047": "千葉県",
	"03": "東京都",
	"044": "神奈川県", "045": "神奈川県", "046": "神奈川県",
	"025": "新潟県",
	"0764": "富山県", "0766": "富山県",
	"0762": "石川県", "0761": "石川県",
	"0776": "福井県",
	"026": "長野県",
	"058": "岐阜県",
	"053": "静岡県", "054": "静岡県",
	"052": "愛知県", "0532": "愛知県", "0564": "愛知県", "0566": "愛知県",
	"059": "三重県",
	"077": "滋賀県",
	"075": "京都府",
	"06": "大阪府", "072": "大阪府",
	"078": "兵庫県", "079": "兵庫県",
	"0742": "奈良県",
	"073": "和歌山県",
	"0857": "鳥取県",
	"0852": "島根県",
	"086": "岡山県",
	"082": "広島県", "084": "広島県",
	"083": "山口県",
	"0886": "徳島県",
	"087": "香川県",
	"089": "愛媛県",
	"0888": "高知県",
	"092": "福岡県", "093": "福岡県",
	"0952": "佐賀県",
	"095": "長崎県",
	"096": "熊本県",
	"097": "大分県",
	"0985": "宮崎県",
	"099": "鹿児島県",
	"098": "沖縄県",
}

// postalPrefixes maps the first two digits of a postal code to a prefecture.
var postalPrefixes = map[string]string{
	"00": "北海道", "01": "秋田県", "02": "岩手県", "03": "青森県",
	"04": "北海道", "05": "北海道", "06": "北海道", "07": "北海道", "08": "北海道", "09": "北海道",
	"10": "東京都", "11": "東京都", "12": "東京都", "13": "東京都", "14": "東京都",
	"15": "東京都", "16": "東京都", "17": "東京都", "18": "東京都", "19": "東京都", "20": "東京都",
	"21": "神奈川県", "22": "神奈川県", "23": "神奈川県", "24": "神奈川県", "25": "神奈川県",
	"26": "千葉県", "27": "千葉県", "28": "千葉県", "29": "千葉県",
	"30": "茨城県", "31": "茨城県",
	"32": "栃木県",
	"33": "埼玉県", "34": "埼玉県", "35": "埼玉県", "36": "埼玉県",
	"37": "群馬県",
	"38": "長野県", "39": "長野県",
	"40": "山梨県",
	"41": "静岡県", "42": "静岡県", "43": "静岡県",
	"44": "愛知県", "45": "愛知県", "46": "愛知県", "47": "愛知県", "48": "愛知県", "49": "愛知県",
	"50": "岐阜県",
	"51": "三重県",
	"52": "滋賀県",
	"53": "大阪府", "54": "大阪府", "55": "大阪府", "56": "大阪府", "57": "大阪府", "58": "大阪府", "59": "大阪府",
	"60": "京都府", "61": "京都府", "62": "京都府",
	"63": "奈良県",
	"64": "和歌山県",
	"65": "兵庫県", "66": "兵庫県", "67": "兵庫県",
	"68": "鳥取県",
	"69": "島根県",
	"70": "岡山県", "71": "岡山県",
	"72": "広島県", "73": "広島県",
	"74": "山口県", "75": "山口県",
	"76": "香川県",
	"77": "徳島県",
	"78": "高知県",
	"79": "愛媛県",
	"80": "福岡県", "81": "福岡県", "82": "福岡県", "83": "福岡県",
	"84": "佐賀県",
	"85": "長崎県",
	"86": "熊本県",
	"87": "大分県",
	"88": "宮崎県",
	"89": "鹿児島県",
	"90": "沖縄県",
	"91": "福井県",
	"92": "石川県",
	"93": "富山県",
	"94": "新潟県", "95": "新潟県",
	"96": "福島県", "97": "福島県",
	"98": "宮城県",
	"99": "山形県",
}

var (
	// PhoneRe matches a hyphenated or parenthesized Japanese fixed-line or
	// mobile number after NormalizeDigits.
	PhoneRe = regexp.MustCompile(`0\d{1,4}[-(]\d{1,4}[-)]\d{4}`)
	// PostalRe matches a postal code that is not part of a longer digit run
	// such as a phone number.
	PostalRe = regexp.MustCompile(`(?:^|[^\d-])(\d{3})-(\d{4})(?:$|[^\d-])`)
	cityRe   = regexp.MustCompile(`^\s*([^\s\d,、。()（）]{1,6}?[市区町村])`)

	dashReplacer = strings.NewReplacer("‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-", "―", "-", "−", "-", "ー", "-", "ｰ", "-")
)

// NormalizeDigits folds full-width digits and the many dash variants used in
// Japanese contact details to ASCII.
func NormalizeDigits(text string) string {
	return dashReplacer.Replace(norm.NFKC.String(text))
}

// AreaCode returns the leading digit group of a phone number.
func AreaCode(phone string) string {
	phone = NormalizeDigits(phone)
	if i := strings.IndexAny(phone, "-("); i > 0 {
		return phone[:i]
	}
	return ""
}

// FromPhone infers the prefecture from a phone number's area code.
func FromPhone(phone string) string {
	return areaCodes[AreaCode(phone)]
}

// AreaCodesFor lists the known area codes of a prefecture.
func AreaCodesFor(prefecture string) []string {
	name := Canonicalize(prefecture)
	if name == "" {
		return nil
	}
	var codes []string
	for code, p := range areaCodes {
		if p == name {
			codes = append(codes, code)
		}
	}
	return codes
}

// FromPostalCode infers the prefecture from a postal code such as
// "460-0008", "〒460-0008" or "4600008".
func FromPostalCode(code string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, NormalizeDigits(code))
	if len(digits) != 7 {
		return ""
	}
	return postalPrefixes[digits[:2]]
}

// FindPhones returns every phone number in text.
func FindPhones(text string) []string {
	return PhoneRe.FindAllString(NormalizeDigits(text), -1)
}

// FindPostalCodes returns every postal code in text as "NNN-NNNN".
func FindPostalCodes(text string) []string {
	var codes []string
	for _, m := range PostalRe.FindAllStringSubmatch(NormalizeDigits(text), -1) {
		codes = append(codes, m[1]+"-"+m[2])
	}
	return codes
}

// FindCity returns the first municipality that follows a prefecture
// suffix in text, e.g. 名古屋市 in "愛知県名古屋市東区".
func FindCity(text string) string {
	first, at := "", len(text)
	for _, p := range prefectures {
		if i := strings.Index(text, p.Name); i >= 0 && i < at {
			first, at = p.Name, i
		}
	}
	if first == "" {
		return ""
	}
	if m := cityRe.FindStringSubmatch(text[at+len(first):]); m != nil {
		return m[1]
	}
	return ""
}
