package contract

// OCRLanguage: OCR 语言代码（Tesseract 三字母代码）。
type OCRLanguage string

const (
	LangAfrikaans          OCRLanguage = "afr"
	LangAmharic            OCRLanguage = "amh"
	LangArabic             OCRLanguage = "ara"
	LangAssamese           OCRLanguage = "asm"
	LangAzerbaijani        OCRLanguage = "aze"
	LangAzerbaijaniCyrl    OCRLanguage = "aze_cyrl"
	LangBelarusian         OCRLanguage = "bel"
	LangBengali            OCRLanguage = "ben"
	LangTibetan            OCRLanguage = "bod"
	LangBosnian            OCRLanguage = "bos"
	LangBreton             OCRLanguage = "bre"
	LangBulgarian          OCRLanguage = "bul"
	LangCatalan            OCRLanguage = "cat"
	LangCebuano            OCRLanguage = "ceb"
	LangCzech              OCRLanguage = "ces"
	LangChineseSimplified  OCRLanguage = "chi_sim"
	LangChineseSimplVert   OCRLanguage = "chi_sim_vert"
	LangChineseTraditional OCRLanguage = "chi_tra"
	LangChineseTradVert    OCRLanguage = "chi_tra_vert"
	LangCherokee           OCRLanguage = "chr"
	LangCorsican           OCRLanguage = "cos"
	LangWelsh              OCRLanguage = "cym"
	LangDanish             OCRLanguage = "dan"
	LangGerman             OCRLanguage = "deu"
	LangDivehi             OCRLanguage = "div"
	LangDzongkha           OCRLanguage = "dzo"
	LangGreek              OCRLanguage = "ell"
	LangEnglish            OCRLanguage = "eng"
	LangMiddleEnglish      OCRLanguage = "enm"
	LangEsperanto          OCRLanguage = "epo"
	LangEstonian           OCRLanguage = "est"
	LangBasque             OCRLanguage = "eus"
	LangFaroese            OCRLanguage = "fao"
	LangPersian            OCRLanguage = "fas"
	LangFilipino           OCRLanguage = "fil"
	LangFinnish            OCRLanguage = "fin"
	LangFrench             OCRLanguage = "fra"
	LangMiddleFrench       OCRLanguage = "frm"
	LangFrisian            OCRLanguage = "fry"
	LangScottishGaelic     OCRLanguage = "gla"
	LangIrish              OCRLanguage = "gle"
	LangGalician           OCRLanguage = "glg"
	LangAncientGreek       OCRLanguage = "grc"
	LangGujarati           OCRLanguage = "guj"
	LangHaitian            OCRLanguage = "hat"
	LangHebrew             OCRLanguage = "heb"
	LangHindi              OCRLanguage = "hin"
	LangCroatian           OCRLanguage = "hrv"
	LangHungarian          OCRLanguage = "hun"
	LangArmenian           OCRLanguage = "hye"
	LangInuktitut          OCRLanguage = "iku"
	LangIndonesian         OCRLanguage = "ind"
	LangIcelandic          OCRLanguage = "isl"
	LangItalian            OCRLanguage = "ita"
	LangOldItalian         OCRLanguage = "ita_old"
	LangJavanese           OCRLanguage = "jav"
	LangJapanese           OCRLanguage = "jpn"
	LangJapaneseVert       OCRLanguage = "jpn_vert"
	LangKannada            OCRLanguage = "kan"
	LangGeorgian           OCRLanguage = "kat"
	LangOldGeorgian        OCRLanguage = "kat_old"
	LangKazakh             OCRLanguage = "kaz"
	LangKhmer              OCRLanguage = "khm"
	LangKyrgyz             OCRLanguage = "kir"
	LangKurmanji           OCRLanguage = "kmr"
	LangKorean             OCRLanguage = "kor"
	LangKoreanVert         OCRLanguage = "kor_vert"
	LangLao                OCRLanguage = "lao"
	LangLatin              OCRLanguage = "lat"
	LangLatvian            OCRLanguage = "lav"
	LangLithuanian         OCRLanguage = "lit"
	LangLuxembourgish      OCRLanguage = "ltz"
	LangMalayalam          OCRLanguage = "mal"
	LangMarathi            OCRLanguage = "mar"
	LangMacedonian         OCRLanguage = "mkd"
	LangMaltese            OCRLanguage = "mlt"
	LangMongolian          OCRLanguage = "mon"
	LangMaori              OCRLanguage = "mri"
	LangMalay              OCRLanguage = "msa"
	LangBurmese            OCRLanguage = "mya"
	LangNepali             OCRLanguage = "nep"
	LangDutch              OCRLanguage = "nld"
	LangNorwegian          OCRLanguage = "nor"
	LangOccitan            OCRLanguage = "oci"
	LangOriya              OCRLanguage = "ori"
	LangPanjabi            OCRLanguage = "pan"
	LangPolish             OCRLanguage = "pol"
	LangPortuguese         OCRLanguage = "por"
	LangPashto             OCRLanguage = "pus"
	LangQuechua            OCRLanguage = "que"
	LangRomanian           OCRLanguage = "ron"
	LangRussian            OCRLanguage = "rus"
	LangSanskrit           OCRLanguage = "san"
	LangSinhala            OCRLanguage = "sin"
	LangSlovak             OCRLanguage = "slk"
	LangSlovenian          OCRLanguage = "slv"
	LangSindhi             OCRLanguage = "snd"
	LangSpanish            OCRLanguage = "spa"
	LangOldSpanish         OCRLanguage = "spa_old"
	LangAlbanian           OCRLanguage = "sqi"
	LangSerbian            OCRLanguage = "srp"
	LangSerbianLatin       OCRLanguage = "srp_latn"
	LangSundanese          OCRLanguage = "sun"
	LangSwahili            OCRLanguage = "swa"
	LangSwedish            OCRLanguage = "swe"
	LangSyriac             OCRLanguage = "syr"
	LangTamil              OCRLanguage = "tam"
	LangTatar              OCRLanguage = "tat"
	LangTelugu             OCRLanguage = "tel"
	LangTajik              OCRLanguage = "tgk"
	LangThai               OCRLanguage = "tha"
	LangTigrinya           OCRLanguage = "tir"
	LangTonga              OCRLanguage = "ton"
	LangTurkish            OCRLanguage = "tur"
	LangUyghur             OCRLanguage = "uig"
	LangUkrainian          OCRLanguage = "ukr"
	LangUrdu               OCRLanguage = "urd"
	LangUzbek              OCRLanguage = "uzb"
	LangUzbekCyrl          OCRLanguage = "uzb_cyrl"
	LangVietnamese         OCRLanguage = "vie"
	LangYiddish            OCRLanguage = "yid"
	LangYoruba             OCRLanguage = "yor"
)

var ocrLanguages = []OCRLanguage{
	LangAfrikaans, LangAmharic, LangArabic, LangAssamese, LangAzerbaijani, LangAzerbaijaniCyrl,
	LangBelarusian, LangBengali, LangTibetan, LangBosnian, LangBreton, LangBulgarian,
	LangCatalan, LangCebuano, LangCzech, LangChineseSimplified, LangChineseSimplVert,
	LangChineseTraditional, LangChineseTradVert, LangCherokee, LangCorsican, LangWelsh,
	LangDanish, LangGerman, LangDivehi, LangDzongkha, LangGreek, LangEnglish, LangMiddleEnglish,
	LangEsperanto, LangEstonian, LangBasque, LangFaroese, LangPersian, LangFilipino, LangFinnish,
	LangFrench, LangMiddleFrench, LangFrisian, LangScottishGaelic, LangIrish, LangGalician,
	LangAncientGreek, LangGujarati, LangHaitian, LangHebrew, LangHindi, LangCroatian,
	LangHungarian, LangArmenian, LangInuktitut, LangIndonesian, LangIcelandic, LangItalian,
	LangOldItalian, LangJavanese, LangJapanese, LangJapaneseVert, LangKannada, LangGeorgian,
	LangOldGeorgian, LangKazakh, LangKhmer, LangKyrgyz, LangKurmanji, LangKorean, LangKoreanVert,
	LangLao, LangLatin, LangLatvian, LangLithuanian, LangLuxembourgish, LangMalayalam,
	LangMarathi, LangMacedonian, LangMaltese, LangMongolian, LangMaori, LangMalay, LangBurmese,
	LangNepali, LangDutch, LangNorwegian, LangOccitan, LangOriya, LangPanjabi, LangPolish,
	LangPortuguese, LangPashto, LangQuechua, LangRomanian, LangRussian, LangSanskrit,
	LangSinhala, LangSlovak, LangSlovenian, LangSindhi, LangSpanish, LangOldSpanish,
	LangAlbanian, LangSerbian, LangSerbianLatin, LangSundanese, LangSwahili, LangSwedish,
	LangSyriac, LangTamil, LangTatar, LangTelugu, LangTajik, LangThai, LangTigrinya, LangTonga,
	LangTurkish, LangUyghur, LangUkrainian, LangUrdu, LangUzbek, LangUzbekCyrl, LangVietnamese,
	LangYiddish, LangYoruba,
}

var ocrLanguageSet = func() map[OCRLanguage]struct{} {
	m := make(map[OCRLanguage]struct{}, len(ocrLanguages))
	for _, l := range ocrLanguages {
		m[l] = struct{}{}
	}
	return m
}()

// OCRLanguages 返回全部已知语言代码（副本）。
func OCRLanguages() []OCRLanguage {
	out := make([]OCRLanguage, len(ocrLanguages))
	copy(out, ocrLanguages)
	return out
}

// Valid 判断是否为已知语言代码。
func (l OCRLanguage) Valid() bool {
	_, ok := ocrLanguageSet[l]
	return ok
}

// OCRPreset: OCR 预设。
type OCRPreset string

const (
	PresetDocument     OCRPreset = "document"
	PresetHandwriting  OCRPreset = "handwriting"
	PresetScan         OCRPreset = "scan"
	PresetReceipt      OCRPreset = "receipt"
	PresetMagazine     OCRPreset = "magazine"
	PresetInvoice      OCRPreset = "invoice"
	PresetBusinessCard OCRPreset = "business-card"
	PresetFax          OCRPreset = "fax"
	PresetMenu         OCRPreset = "menu"
	PresetSignage      OCRPreset = "signage"
	PresetScreenshot   OCRPreset = "screenshot"
	PresetNewspaper    OCRPreset = "newspaper"
	PresetBook         OCRPreset = "book"
	PresetForm         OCRPreset = "form"
)

var ocrPresets = []OCRPreset{
	PresetDocument, PresetHandwriting, PresetScan, PresetReceipt, PresetMagazine,
	PresetInvoice, PresetBusinessCard, PresetFax, PresetMenu, PresetSignage,
	PresetScreenshot, PresetNewspaper, PresetBook, PresetForm,
}

// OCRPresets 返回全部已知预设（副本）。
func OCRPresets() []OCRPreset {
	out := make([]OCRPreset, len(ocrPresets))
	copy(out, ocrPresets)
	return out
}

func (p OCRPreset) Valid() bool {
	for _, k := range ocrPresets {
		if k == p {
			return true
		}
	}
	return false
}
