// Package langmeta provides the Minecraft locale registry (native names)
// used for export file naming and CLI display.
//
// Minecraft locale codes are lower case with an underscore separator
// (zh_cn, en_us). Legacy .lang files were named with an upper-case region
// (zh_CN.lang); Normalize accepts both spellings and BCP-47 style tags.
package langmeta

import "strings"

// DefaultLocale is the export locale used when none is configured.
const DefaultLocale = "zh_cn"

// Meta describes locale display metadata.
type Meta struct {
	Code string
	Name string
}

// Registry contains canonical Minecraft locale metadata keyed by code.
var Registry = map[string]Meta{
	"af_za": {Name: "Afrikaans"},
	"ar_sa": {Name: "العربية"},
	"bg_bg": {Name: "Български"},
	"ca_es": {Name: "Català"},
	"cs_cz": {Name: "Čeština"},
	"da_dk": {Name: "Dansk"},
	"de_at": {Name: "Deutsch (Österreich)"},
	"de_ch": {Name: "Deutsch (Schweiz)"},
	"de_de": {Name: "Deutsch"},
	"el_gr": {Name: "Ελληνικά"},
	"en_au": {Name: "English (Australia)"},
	"en_ca": {Name: "English (Canada)"},
	"en_gb": {Name: "English (UK)"},
	"en_nz": {Name: "English (New Zealand)"},
	"en_us": {Name: "English (US)"},
	"es_ar": {Name: "Español (Argentina)"},
	"es_es": {Name: "Español (España)"},
	"es_mx": {Name: "Español (México)"},
	"et_ee": {Name: "Eesti"},
	"fi_fi": {Name: "Suomi"},
	"fr_ca": {Name: "Français (Canada)"},
	"fr_fr": {Name: "Français (France)"},
	"he_il": {Name: "עברית"},
	"hu_hu": {Name: "Magyar"},
	"id_id": {Name: "Bahasa Indonesia"},
	"it_it": {Name: "Italiano"},
	"ja_jp": {Name: "日本語"},
	"ko_kr": {Name: "한국어"},
	"lt_lt": {Name: "Lietuvių"},
	"lv_lv": {Name: "Latviešu"},
	"lzh":   {Name: "文言"},
	"nl_nl": {Name: "Nederlands"},
	"no_no": {Name: "Norsk bokmål"},
	"pl_pl": {Name: "Polski"},
	"pt_br": {Name: "Português (Brasil)"},
	"pt_pt": {Name: "Português (Portugal)"},
	"ro_ro": {Name: "Română"},
	"ru_ru": {Name: "Русский"},
	"sk_sk": {Name: "Slovenčina"},
	"sr_sp": {Name: "Српски"},
	"sv_se": {Name: "Svenska"},
	"th_th": {Name: "ไทย"},
	"tr_tr": {Name: "Türkçe"},
	"uk_ua": {Name: "Українська"},
	"vi_vn": {Name: "Tiếng Việt"},
	"zh_cn": {Name: "简体中文 (中国大陆)"},
	"zh_hk": {Name: "繁體中文 (香港特別行政區)"},
	"zh_tw": {Name: "繁體中文 (台灣)"},
}

// Normalize converts a locale spelling (zh-CN, ZH_cn, " en_US ") into the
// Minecraft form (zh_cn). The empty string stays empty.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, "-", "_")
	return strings.ToLower(code)
}

// Known reports whether code resolves to a registry entry.
func Known(code string) bool {
	_, ok := Registry[Normalize(code)]
	return ok
}

// Resolve returns locale metadata for code. Unknown codes pass through
// with the normalized code as their name.
func Resolve(code string) Meta {
	normalized := Normalize(code)
	if m, ok := Registry[normalized]; ok {
		m.Code = normalized
		return m
	}
	return Meta{Code: normalized, Name: normalized}
}

// Display returns "Name (code)" for known locales and the code otherwise.
func Display(code string) string {
	m := Resolve(code)
	if m.Name == m.Code {
		return m.Code
	}
	return m.Name + " (" + m.Code + ")"
}
