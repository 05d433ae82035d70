// Package region maps text, phone area codes and postal codes to Japan's 47
// prefectures. Every function returns the formal name including its
// administrative suffix (都, 道, 府 or 県).
package region

// Prefecture is one first-level administrative division.
type Prefecture struct {
	Name   string // formal, e.g. 東京都
	Short  string // suffix stripped, e.g. 東京
	Romaji string // lower-case Hepburn, e.g. tokyo
}

var prefectures = []Prefecture{
	{"北海道", "北海道", "hokkaido"},
	{"青森県", "青森", "aomori"},
	{"岩手県", "岩手", "iwate"},
	{"宮城県", "宮城", "miyagi"},
	{"秋田県", "秋田", "akita"},
	{"山形県", "山形", "yamagata"},
	{"福島県", "福島", "fukushima"},
	{"茨城県", "茨城", "ibaraki"},
	{"栃木県", "栃木", "tochigi"},
	{"群馬県", "群馬", "gunma"},
	{"埼玉県", "埼玉", "saitama"},
	{"千葉県", "千葉", "chiba"},
	{"東京都", "東京", "tokyo"},
	{"神奈川県", "神奈川", "kanagawa"},
	{"新潟県", "新潟", "niigata"},
	{"富山県", "富山", "toyama"},
	{"石川県", "石川", "ishikawa"},
	{"福井県", "福井", "fukui"},
	{"山梨県", "山梨", "yamanashi"},
	{"長野県", "長野", "nagano"},
	{"岐阜県", "岐阜", "gifu"},
	{"静岡県", "静岡", "shizuoka"},
	{"愛知県", "愛知", "aichi"},
	{"三重県", "三重", "mie"},
	{"滋賀県", "滋賀", "shiga"},
	{"京都府", "京都", "kyoto"},
	{"大阪府", "大阪", "osaka"},
	{"兵庫県", "兵庫", "hyogo"},
	{"奈良県", "奈良", "nara"},
	{"和歌山県", "和歌山", "wakayama"},
	{"鳥取県", "鳥取", "tottori"},
	{"島根県", "島根", "shimane"},
	{"岡山県", "岡山", "okayama"},
	{"広島県", "広島", "hiroshima"},
	{"山口県", "山口", "yamaguchi"},
	{"徳島県", "徳島", "tokushima"},
	{"香川県", "香川", "kagawa"},
	{"愛媛県", "愛媛", "ehime"},
	{"高知県", "高知", "kochi"},
	{"福岡県", "福岡", "fukuoka"},
	{"佐賀県", "佐賀", "saga"},
	{"長崎県", "長崎", "nagasaki"},
	{"熊本県", "熊本", "kumamoto"},
	{"大分県", "大分", "oita"},
	{"宮崎県", "宮崎", "miyazaki"},
	{"鹿児島県", "鹿児島", "kagoshima"},
	{"沖縄県", "沖縄", "okinawa"},
}

var (
	byName   = make(map[string]Prefecture, len(prefectures))
	byRomaji = make(map[string]Prefecture, len(prefectures))
)

func init() {
	for _, p := range prefectures {
		byName[p.Name] = p
		byName[p.Short] = p
		byRomaji[p.Romaji] = p
	}
	// Common alternate spellings.
	byRomaji["hyougo"] = byName["兵庫県"]
	byRomaji["kouchi"] = byName["高知県"]
	byRomaji["ooita"] = byName["大分県"]
	byRomaji["oosaka"] = byName["大阪府"]
	byRomaji["toukyou"] = byName["東京都"]
	byRomaji["kyouto"] = byName["京都府"]

	needles = buildNeedles(false)
	formalNeedles = buildNeedles(true)
}

// All returns the formal names of every prefecture in JIS order.
func All() []string {
	names := make([]string, len(prefectures))
	for i, p := range prefectures {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the prefecture for a canonical name.
func Lookup(name string) (Prefecture, bool) {
	p, ok := byName[Canonicalize(name)]
	return p, ok
}

// Short returns the suffix-stripped form of a prefecture name, or "" if the
// name is not recognized.
func Short(name string) string {
	if p, ok := Lookup(name); ok {
		return p.Short
	}
	return ""
}
